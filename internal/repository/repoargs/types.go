package repoargs

type RepositoryName string

const (
	UserRepoName               RepositoryName = "user"
	OrderRepoName              RepositoryName = "order"
	BalanceTransactionRepoName RepositoryName = "balance_transaction"
	BalanceRequestRepoName     RepositoryName = "balance_request"
	CouponRepoName             RepositoryName = "coupon"
	CouponUsageRepoName        RepositoryName = "coupon_usage"
	ServiceAccountRepoName     RepositoryName = "service_account"
	OutboxRepoName             RepositoryName = "outbox"
	AuditRepoName              RepositoryName = "audit"
)
