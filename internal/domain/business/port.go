package business

import "context"

// Remote port (interface ke REST API yang menyimpan record)
type Remote interface {
	List(ctx context.Context) ([]Business, error)
	Create(ctx context.Context, p Payload) error
	Update(ctx context.Context, id ID, p Payload) error
	Delete(ctx context.Context, id ID) error
}
