package service

import (
	"context"

	"ordergw/internal/apperr"
	"ordergw/internal/util"
)

// maxIDAttempts bounds the collision-retry loop of ID generation. Running
// out means the ID space is effectively saturated, which is a systemic
// problem, not something a retry fixes.
const maxIDAttempts = 100

func generateID(ctx context.Context, prefix, entity string,
	exists func(context.Context, string) (bool, error)) (string, error) {

	for i := 0; i < maxIDAttempts; i++ {
		id := util.EntityID(prefix)
		taken, err := exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", apperr.IDGenExhausted(entity)
}
