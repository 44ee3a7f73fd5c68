package service

import (
	"context"
	"fmt"
	"time"

	"libraryhub/internal/cache"
	"libraryhub/internal/model"
)

const bookCacheTTL = 5 * time.Minute

// bookCache holds book details read through Get. A nil cache client turns
// it into a no-op.
type bookCache struct {
	client *cache.Client
}

func (c bookCache) key(id uint) string {
	return fmt.Sprintf("book:%d", id)
}

func (c bookCache) get(ctx context.Context, id uint) (*model.Book, bool) {
	var book model.Book
	if !c.client.GetJSON(ctx, c.key(id), &book) {
		return nil, false
	}
	return &book, true
}

func (c bookCache) put(ctx context.Context, book *model.Book) {
	_ = c.client.SetJSON(ctx, c.key(book.ID), book, bookCacheTTL)
}

func (c bookCache) invalidate(ctx context.Context, ids ...uint) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.key(id))
	}
	_ = c.client.Delete(ctx, keys...)
}

func (c bookCache) invalidateBooks(ctx context.Context, books []model.Book) {
	ids := make([]uint, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	c.invalidate(ctx, ids...)
}
