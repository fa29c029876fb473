package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

type Queryer interface {
	*Conn | *Tx
	repo.Queryer
	GORM(ctx context.Context) *gorm.DB
}
