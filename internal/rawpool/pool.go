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

// Package rawpool supplies size-keyed sync.Pool registries for scratch
// buffers: the Markesteijn tile candidates and derivative/homogeneity
// fields, and images built with raw.NewImageFromPool.
package rawpool

import "sync"

// Pool of constant sized arrays of given type, to reduce memory allocation overhead
var poolFloat32 = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

// Pool of constant sized arrays of given type, to reduce memory allocation overhead
var poolByte = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

func getSizedPoolFloat32(size int) *sync.Pool {
	poolFloat32.RLock()
	pool := poolFloat32.m[size]
	poolFloat32.RUnlock()
	if pool == nil {
		pool = &sync.Pool{
			New: func() interface{} {
				return make([]float32, size)
			},
		}
		poolFloat32.Lock()
		poolFloat32.m[size] = pool
		poolFloat32.Unlock()
	}
	return pool
}

// GetFloat32 retrieves a zeroed array of the given size from the pool.
func GetFloat32(size int) []float32 {
	pool := getSizedPoolFloat32(size)
	arr := pool.Get().([]float32)
	for i := range arr {
		arr[i] = 0
	}
	return arr
}

// PutFloat32 returns an array to the pool, keyed by its capacity.
func PutFloat32(arr []float32) {
	pool := getSizedPoolFloat32(cap(arr))
	pool.Put(arr[:cap(arr)])
}

func getSizedPoolByte(size int) *sync.Pool {
	poolByte.RLock()
	pool := poolByte.m[size]
	poolByte.RUnlock()
	if pool == nil {
		pool = &sync.Pool{
			New: func() interface{} {
				return make([]byte, size)
			},
		}
		poolByte.Lock()
		poolByte.m[size] = pool
		poolByte.Unlock()
	}
	return pool
}

// GetByte retrieves a zeroed array of the given size from the pool.
func GetByte(size int) []byte {
	pool := getSizedPoolByte(size)
	arr := pool.Get().([]byte)
	for i := range arr {
		arr[i] = 0
	}
	return arr
}

// PutByte returns an array to the pool, keyed by its capacity.
func PutByte(arr []byte) {
	pool := getSizedPoolByte(cap(arr))
	pool.Put(arr[:cap(arr)])
}

// ClearPools discards all pooled buffers by replacing both registries; it
// does not run the garbage collector itself.
// Mainly useful in tests that check allocation counts across runs.
func ClearPools() {
	poolFloat32 = struct {
		sync.RWMutex
		m map[int]*sync.Pool
	}{m: make(map[int]*sync.Pool)}
	poolByte = struct {
		sync.RWMutex
		m map[int]*sync.Pool
	}{m: make(map[int]*sync.Pool)}
}
