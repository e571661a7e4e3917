package repoargs

type CreateServiceAccount struct {
	UserID       int64
	OrderID      int64
	Login        string
	PasswordHash string
}
