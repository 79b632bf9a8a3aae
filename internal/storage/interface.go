// Package storage defines interfaces and implementations for evaluation
// archive backends.
package storage

import (
	"context"
	"sync"

	"github.com/clearskies/obsplan/internal/types"
)

// StorageEngineInterface is an interface that provides a few standardized
// methods for various storage backends
type StorageEngineInterface interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.EvaluationRecord
}
