package sync

import "github.com/iudanet/tasksync/internal/models"

// partition splits items into consecutive batches of at most size elements.
// The order of items is preserved.
func partition(items []*models.QueueItem, size int) [][]*models.QueueItem {
	if size <= 0 {
		size = DefaultBatchSize
	}

	batches := make([][]*models.QueueItem, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}
