//go:build sonic

package jsonx

import (
	"github.com/bytedance/sonic"
)

var (
	Marshal       = sonic.Marshal
	MarshalIndent = sonic.MarshalIndent
	Unmarshal     = sonic.Unmarshal
)
