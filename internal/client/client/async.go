package client

import "context"

// Async exposes every Client operation as a non-blocking call returning a
// Future. Operations started through Async share the wrapped client's
// session, so a Login future that resolves successfully has already
// installed its token.
type Async struct {
	c Client
}

// NewAsync wraps c.
func NewAsync(c Client) *Async {
	return &Async{c: c}
}

func (a *Async) Register(ctx context.Context, username, email, password string) *Future[*AuthResult] {
	return Go(ctx, func(ctx context.Context) (*AuthResult, error) {
		return a.c.Register(ctx, username, email, password)
	})
}

func (a *Async) Login(ctx context.Context, identifier, password string) *Future[*AuthResult] {
	return Go(ctx, func(ctx context.Context) (*AuthResult, error) {
		return a.c.Login(ctx, identifier, password)
	})
}

// Logout is synchronous: it only swaps the local session.
func (a *Async) Logout() {
	a.c.Logout()
}

func (a *Async) Create(ctx context.Context, model string, params Record) *Future[Record] {
	return Go(ctx, func(ctx context.Context) (Record, error) {
		return a.c.Create(ctx, model, params)
	})
}

func (a *Async) All(ctx context.Context, model string) *Future[[]Record] {
	return Go(ctx, func(ctx context.Context) ([]Record, error) {
		return a.c.All(ctx, model)
	})
}

func (a *Async) Get(ctx context.Context, model, id string) *Future[Record] {
	return Go(ctx, func(ctx context.Context) (Record, error) {
		return a.c.Get(ctx, model, id)
	})
}

func (a *Async) Update(ctx context.Context, model, id string, params Record) *Future[Record] {
	return Go(ctx, func(ctx context.Context) (Record, error) {
		return a.c.Update(ctx, model, id, params)
	})
}

func (a *Async) Delete(ctx context.Context, model, id string) *Future[Record] {
	return Go(ctx, func(ctx context.Context) (Record, error) {
		return a.c.Delete(ctx, model, id)
	})
}

func (a *Async) Files(ctx context.Context) *Future[[]Record] {
	return Go(ctx, func(ctx context.Context) ([]Record, error) {
		return a.c.Files(ctx)
	})
}

func (a *Async) File(ctx context.Context, id string) *Future[Record] {
	return Go(ctx, func(ctx context.Context) (Record, error) {
		return a.c.File(ctx, id)
	})
}

// Upload starts the upload; progress fires on the transport goroutine zero
// or more times before the future resolves.
func (a *Async) Upload(ctx context.Context, items []UploadItem, progress ProgressFunc) *Future[[]Record] {
	return Go(ctx, func(ctx context.Context) ([]Record, error) {
		return a.c.Upload(ctx, items, progress)
	})
}
