// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package rawlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAlsoToFileDuplicatesOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	if err := AlsoToFile(path); err != nil {
		t.Fatalf("AlsoToFile: %v", err)
	}
	Printf("hello %d\n", 7)
	Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if string(content) != "hello 7\n" {
		t.Fatalf("log file content = %q, want %q", content, "hello 7\n")
	}
}

func TestAlsoToFileSwitchesFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	if err := AlsoToFile(first); err != nil {
		t.Fatalf("AlsoToFile(first): %v", err)
	}
	Print("one")
	if err := AlsoToFile(second); err != nil {
		t.Fatalf("AlsoToFile(second): %v", err)
	}
	Print("two")
	Sync()

	content, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second log file: %v", err)
	}
	if string(content) != "two" {
		t.Fatalf("second log file content = %q, want %q", content, "two")
	}
}
