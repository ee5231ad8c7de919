package payment

import "context"

// WalletProvisionerClient is the subset of the platform client the wallet
// provisioner needs.
type WalletProvisionerClient interface {
	CreateWallet(ctx context.Context, ownerID, currency string) (*Wallet, error)
}

// WalletProvisioner creates the merchant wallet on the payments platform.
type WalletProvisioner struct {
	client   WalletProvisionerClient
	currency string
}

// NewWalletProvisioner creates a wallet provisioner. An empty currency
// defaults to EUR.
func NewWalletProvisioner(client WalletProvisionerClient, currency string) *WalletProvisioner {
	if currency == "" {
		currency = "EUR"
	}
	return &WalletProvisioner{client: client, currency: currency}
}

// CreateWallet creates a wallet owned by the given payment user and returns
// the wallet id.
func (p *WalletProvisioner) CreateWallet(ctx context.Context, ownerID string) (string, error) {
	wallet, err := p.client.CreateWallet(ctx, ownerID, p.currency)
	if err != nil {
		return "", err
	}
	return wallet.ID, nil
}
