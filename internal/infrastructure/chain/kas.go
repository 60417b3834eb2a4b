package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"collectible-order/internal/config"
)

// KASGateway pays fees and mints tokens through the Klaytn API Service.
type KASGateway struct {
	walletURL  string
	tokenURL   string
	chainID    string
	accessKey  string
	secretKey  string
	feeAddress string
	http       *http.Client
}

func NewKASGateway(cfg config.KAS, httpClient *http.Client) *KASGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &KASGateway{
		walletURL:  strings.TrimRight(cfg.WalletURL, "/"),
		tokenURL:   strings.TrimRight(cfg.TokenURL, "/"),
		chainID:    cfg.ChainID,
		accessKey:  cfg.AccessKey,
		secretKey:  cfg.SecretKey,
		feeAddress: cfg.FeeAddress,
		http:       httpClient,
	}
}

type valueTransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Value  string `json:"value"`
	Submit bool   `json:"submit"`
}

type mintRequest struct {
	To  string `json:"to"`
	ID  string `json:"id"`
	URI string `json:"uri"`
}

type txResponse struct {
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status"`
}

func (g *KASGateway) ChargeFee(ctx context.Context, price int64, from string) (bool, error) {
	res, err := g.post(ctx, g.walletURL+"/v2/tx/value", valueTransferRequest{
		From:   from,
		To:     g.feeAddress,
		Value:  KlayToPeb(price),
		Submit: true,
	})
	if err != nil {
		return false, fmt.Errorf("charge fee: %w", err)
	}
	slog.Debug("fee charged", "from", from, "price", price, "tx", res.TransactionHash)
	return res.TransactionHash != "", nil
}

func (g *KASGateway) Mint(ctx context.Context, to, metadataURI, contractAlias string) (string, error) {
	tokenID := NewTokenID()
	res, err := g.post(ctx, fmt.Sprintf("%s/v2/contract/%s/token", g.tokenURL, contractAlias), mintRequest{
		To:  to,
		ID:  tokenID,
		URI: metadataURI,
	})
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	if res.TransactionHash == "" {
		return "", nil
	}
	slog.Debug("token minted", "to", to, "token_id", tokenID, "tx", res.TransactionHash)
	return tokenID, nil
}

func (g *KASGateway) Refund(ctx context.Context, price int64, to string) error {
	res, err := g.post(ctx, g.walletURL+"/v2/tx/value", valueTransferRequest{
		From:   g.feeAddress,
		To:     to,
		Value:  KlayToPeb(price),
		Submit: true,
	})
	if err != nil {
		return fmt.Errorf("refund: %w", err)
	}
	if res.TransactionHash == "" {
		return fmt.Errorf("refund: no transaction submitted")
	}
	return nil
}

func (g *KASGateway) post(ctx context.Context, url string, body any) (*txResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.accessKey, g.secretKey)
	req.Header.Set("x-chain-id", g.chainID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("kas returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var res txResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode kas response: %w", err)
	}
	return &res, nil
}
