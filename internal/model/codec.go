package model

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Classifier artifact kinds.
const (
	KindForest   = "forest"
	KindLogistic = "logistic"
)

type classifierArtifact struct {
	Kind     string    `msgpack:"kind"`
	Forest   *Forest   `msgpack:"forest,omitempty"`
	Logistic *Logistic `msgpack:"logistic,omitempty"`
}

// DecodeClassifier decodes and validates a classifier artifact.
func DecodeClassifier(data []byte) (Classifier, error) {
	var art classifierArtifact
	if err := msgpack.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode classifier: %w", err)
	}
	switch art.Kind {
	case KindForest:
		if art.Forest == nil {
			return nil, fmt.Errorf("decode classifier: kind %q without forest body", art.Kind)
		}
		if err := art.Forest.Validate(); err != nil {
			return nil, fmt.Errorf("decode classifier: %w", err)
		}
		return art.Forest, nil
	case KindLogistic:
		if art.Logistic == nil {
			return nil, fmt.Errorf("decode classifier: kind %q without logistic body", art.Kind)
		}
		if err := art.Logistic.Validate(); err != nil {
			return nil, fmt.Errorf("decode classifier: %w", err)
		}
		return art.Logistic, nil
	default:
		return nil, fmt.Errorf("decode classifier: unsupported kind %q", art.Kind)
	}
}

// EncodeClassifier encodes a Forest or Logistic classifier artifact.
func EncodeClassifier(c Classifier) ([]byte, error) {
	var art classifierArtifact
	switch m := c.(type) {
	case *Forest:
		art = classifierArtifact{Kind: KindForest, Forest: m}
	case *Logistic:
		art = classifierArtifact{Kind: KindLogistic, Logistic: m}
	default:
		return nil, fmt.Errorf("encode classifier: unsupported type %T", c)
	}
	return msgpack.Marshal(&art)
}

// DecodeImputer decodes and validates a SimpleImputer artifact.
func DecodeImputer(data []byte) (*SimpleImputer, error) {
	var imp SimpleImputer
	if err := msgpack.Unmarshal(data, &imp); err != nil {
		return nil, fmt.Errorf("decode imputer: %w", err)
	}
	if err := imp.Validate(); err != nil {
		return nil, fmt.Errorf("decode imputer: %w", err)
	}
	return &imp, nil
}

// EncodeImputer encodes a SimpleImputer artifact.
func EncodeImputer(imp *SimpleImputer) ([]byte, error) {
	return msgpack.Marshal(imp)
}
