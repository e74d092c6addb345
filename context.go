package arena

import "context"

type allocatorCtxKey string

const arenaCtxKey allocatorCtxKey = "_arCtxK"

// WithAllocator binds ctx with the target allocator, so request-scoped code
// can receive it back using GetAllocator or GetAllocatorOrDefault.
func WithAllocator(ctx context.Context, allocator Allocator) context.Context {
	return context.WithValue(ctx, arenaCtxKey, allocator)
}

// GetAllocator returns the allocator associated with this ctx.
// Returns the allocator and true if there was some association.
func GetAllocator(ctx context.Context) (Allocator, bool) {
	value := ctx.Value(arenaCtxKey)
	if value == nil {
		return nil, false
	}
	allocator, ok := value.(Allocator)
	if !ok {
		return nil, false
	}
	return allocator, true
}

// GetAllocatorOrDefault returns the allocator associated with this ctx,
// or defaultAllocator if there was no association.
func GetAllocatorOrDefault(ctx context.Context, defaultAllocator Allocator) Allocator {
	ctxAllocator, ok := GetAllocator(ctx)
	if !ok {
		return defaultAllocator
	}
	return ctxAllocator
}
