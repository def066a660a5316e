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

package rawpool

import "testing"

func TestGetFloat32IsZeroedAndSized(t *testing.T) {
	arr := GetFloat32(16)
	if len(arr) != 16 {
		t.Fatalf("len = %d, want 16", len(arr))
	}
	for i, v := range arr {
		if v != 0 {
			t.Fatalf("index %d not zeroed: %v", i, v)
		}
	}
}

func TestPutFloat32RecyclesDirtyBuffer(t *testing.T) {
	ClearPools()
	arr := GetFloat32(8)
	for i := range arr {
		arr[i] = 9
	}
	PutFloat32(arr)
	recycled := GetFloat32(8)
	if len(recycled) != 8 {
		t.Fatalf("len = %d, want 8", len(recycled))
	}
	for i, v := range recycled {
		if v != 0 {
			t.Fatalf("recycled buffer not re-zeroed at index %d: %v", i, v)
		}
	}
}

func TestGetByteIsZeroedAndSized(t *testing.T) {
	arr := GetByte(10)
	if len(arr) != 10 {
		t.Fatalf("len = %d, want 10", len(arr))
	}
	for i, v := range arr {
		if v != 0 {
			t.Fatalf("index %d not zeroed: %v", i, v)
		}
	}
	PutByte(arr)
}
