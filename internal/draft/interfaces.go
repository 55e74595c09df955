package draft

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmoura/orderdraft-backend/internal/erp"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// erpGateway is the slice of the ERP client the draft service needs: line
// hydration for existing documents and the batch submit.
type erpGateway interface {
	DocumentItems(ctx context.Context, scope types.RequestScope, documentType enums.DocumentType, number string) ([]erp.DocumentItem, error)
	SubmitItemBatch(ctx context.Context, scope types.RequestScope, documentType enums.DocumentType, number string, batch erp.BatchRequest) (*erp.BatchResponse, error)
}
