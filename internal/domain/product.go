package domain

// NftInfo describes how a product's token is minted.
type NftInfo struct {
	MetadataURI   string `json:"metadataUri"`
	ContractAlias string `json:"contractAlias"`
}

// Product is a read-only snapshot from the product catalog. Price is in KLAY.
type Product struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Price         int64   `json:"price"`
	RemainedCount int     `json:"remainedCount"`
	NftImageURL   string  `json:"nftImageUrl"`
	NftInfo       NftInfo `json:"nftInfo"`
}
