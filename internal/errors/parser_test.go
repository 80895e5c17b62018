package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
		wantMsg  string
	}{
		{"record not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), "product", ResourceNotFound, "Product not found"},
		{"postgres duplicate email", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`), "create user", AuthEmailAlreadyExists, "Email is already in use"},
		{"sqlite duplicate slug", errors.New("UNIQUE constraint failed: brands.slug"), "create brand", ResourceAlreadyExists, "An item with the same name already exists"},
		{"fk on delete", errors.New(`update or delete on table "products" violates foreign key constraint "fk_order_products_product" on table "order_products"`), "delete product", ResourceConflict, "The product is still in use and cannot be deleted"},
		{"fk on insert", errors.New("FOREIGN KEY constraint failed"), "create cart item", ResourceNotFound, "A referenced record does not exist"},
		{"not null", errors.New("NOT NULL constraint failed: products.name"), "create product", ValidationRequired, "A required field is missing"},
		{"network", errors.New("dial tcp: connection refused"), "feed", InternalExternalAPI, "An upstream service is unavailable, please try again later"},
		{"unknown on update", errors.New("boom"), "update order", InternalServerError, "Failed to update order, please try again later"},
		{"nil", nil, "", InternalServerError, "Something went wrong, please try again later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, tt.wantMsg, info.Message)
		})
	}
}
