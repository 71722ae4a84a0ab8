// Package safetensors reads and writes SafeTensors files.
//
//	Format Structure:
//	  [8 bytes: header size N (uint64 LE)]
//	  [N bytes: JSON header, name -> {dtype, shape, data_offsets}, plus optional __metadata__]
//	  [tensor data: raw little-endian bytes, offsets relative to the end of the header]
//
// Only F32 tensors can be decoded into tensors; every other dtype is carried
// through as raw bytes so files round-trip unchanged.
package safetensors
