package application

import (
	"context"

	"github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
)

type AdminRepository interface {
	Admin(username string) (*domain.Admin, bool)
	AddAdmin(a domain.Admin) error
	Save(ctx context.Context) error
}
