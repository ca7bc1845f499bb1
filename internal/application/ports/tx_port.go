package ports

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Leads         repository.LeadRepository
	Sales         repository.SaleRepository
	Payments      repository.PaymentRepository
	Commissions   repository.CommissionRepository
	Policies      repository.PolicyRepository
	Jobs          repository.JobRepository
	AuditLogs     repository.AuditLogRepository
	Notifications repository.NotificationRepository
}

// TxRunner ejecuta fn dentro de una transacción; si fn devuelve error se hace rollback.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(r TxRepos) error) error
}
