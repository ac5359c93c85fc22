package enum

type KVStoreType string

const (
	KVStoreTypeBadger KVStoreType = "badger"
	KVStoreTypeRedis  KVStoreType = "redis"
)

// TradeType categorizes a reconciled trade by the assets on both sides.
type TradeType string

const (
	// TradeTypeMainstream means both sides of the trade are major reference
	// assets (dollar stables, bitcoin, ether).
	TradeTypeMainstream TradeType = "mainstream_coin_trade"
	// TradeTypeAlt means at least one side is a long-tail token.
	TradeTypeAlt TradeType = "alt_coin_trade"
)
