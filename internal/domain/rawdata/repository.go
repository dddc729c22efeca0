package rawdata

import "context"

type Repository interface {
	Insert(ctx context.Context, item Snapshot) error
}
