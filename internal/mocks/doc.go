// Package mocks provides hand-written test doubles for the service and store
// interfaces. Each mock exposes a Fn field per method; unset fields fall back
// to simple defaults so tests configure only what they exercise.
//
//	jwt := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return nil, auth.ErrExpiredToken
//	    },
//	}
//
// TestifyMockTaskStore uses testify/mock for tests that assert call order and
// arguments.
package mocks
