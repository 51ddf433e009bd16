// Package serialization saves and loads layer weights as SafeTensors files.
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON, tensor name -> {dtype, shape, data_offsets}]
//	  [Tensor data: raw little-endian bytes, tensors in name order]
//
// The optional "__metadata__" header entry holds string key/value pairs.
// WriteSafeTensors records a SHA-256 of the data section under the
// "checksum" key and ReadSafeTensors verifies it when present.
//
// Example usage:
//
//	// Save a layer
//	mha, _ := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 512, NumHeads: 8}, backend)
//	err := serialization.WriteSafeTensors("mha.safetensors", mha.StateDict(),
//	    map[string]string{"d_model": "512", "num_heads": "8"})
//
//	// Load it back
//	stateDict, metadata, err := serialization.ReadSafeTensors("mha.safetensors", backend)
//	err = mha.LoadStateDict(stateDict)
package serialization
