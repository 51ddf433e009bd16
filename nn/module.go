// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/tnn-lab/tnn/internal/nn"
	"github.com/tnn-lab/tnn/internal/serialization"
	"github.com/tnn-lab/tnn/tensor"
)

// Module is implemented by every layer with parameters.
//
// Forward is not part of the interface: attention layers take four inputs
// and return attention weights alongside their output.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Parameters returns all trainable parameters, including those of
	// nested layers.
	Parameters() []*Parameter[B]

	// StateDict returns a map of dotted parameter names to raw tensors,
	// e.g. "wq.weight".
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies matching entries into the parameters.
	//
	// Returns an error if a required parameter is missing or has the wrong
	// shape or dtype.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Save writes a module's state dict to a SafeTensors file.
//
// metadata may be nil. A SHA-256 checksum of the tensor data is always
// recorded and verified by Load.
//
// Example:
//
//	mha, _ := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 512, NumHeads: 8}, backend)
//	err := nn.Save(mha, "mha.safetensors", map[string]string{"num_heads": "8"})
func Save[B tensor.Backend](module Module[B], path string, metadata map[string]string) error {
	return serialization.WriteSafeTensors(path, module.StateDict(), metadata)
}

// Load reads a SafeTensors file into module and returns the file metadata.
//
// Example:
//
//	mha, _ := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 512, NumHeads: 8}, backend)
//	meta, err := nn.Load("mha.safetensors", backend, mha)
func Load[B tensor.Backend](path string, backend B, module Module[B]) (map[string]string, error) {
	stateDict, metadata, err := serialization.ReadSafeTensors(path, backend)
	if err != nil {
		return nil, err
	}
	if err := module.LoadStateDict(stateDict); err != nil {
		return nil, err
	}
	return metadata, nil
}
