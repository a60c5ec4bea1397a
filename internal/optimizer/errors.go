package optimizer

import "errors"

var (
	// ErrEmptyKnowledgeBase means a k-NN selector was configured without exemplars.
	ErrEmptyKnowledgeBase = errors.New("knowledge base is empty")
	// ErrInvalidExemplar means a knowledge-base entry has an unusable label or feature.
	ErrInvalidExemplar = errors.New("invalid exemplar")
	// ErrInvalidK means the neighbour count was not positive.
	ErrInvalidK = errors.New("k must be positive")
	// ErrInvalidThresholds means decision-tree thresholds are out of range.
	ErrInvalidThresholds = errors.New("invalid thresholds")
	// ErrUnknownSelector means a selector kind other than tree or knn was requested.
	ErrUnknownSelector = errors.New("unknown selector")
)
