package domain

// Member is a read-only profile snapshot from the member service.
type Member struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	WalletAddress string `json:"walletAddress"`
}
