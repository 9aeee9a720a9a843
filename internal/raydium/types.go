package raydium

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

// Raydium AMM v4 program
const AmmProgramID = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

// swapBaseIn instruction discriminator (fixed input side)
const swapBaseInDiscriminator = 9

// MintInfo is a mint reference inside a pool-directory record.
type MintInfo struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}

// PoolRecord is one entry of the pool-directory response. Fields that the
// quote math depends on are pointers so a record that lacks them is rejected
// as malformed instead of silently decoding to zero.
type PoolRecord struct {
	ID       string       `json:"id"`
	MintA    *MintInfo    `json:"mintA"`
	MintB    *MintInfo    `json:"mintB"`
	ReserveA *json.Number `json:"reserveA"`
	ReserveB *json.Number `json:"reserveB"`
	FeeBps   *uint16      `json:"feeBps"`
}

// poolKeys is the account set needed to build the swap instruction. It is
// fetched fresh at build time, never reused from the quote path.
type poolKeys struct {
	ProgramID    string `json:"programId"`
	ID           string `json:"id"`
	Authority    string `json:"authority"`
	OpenOrders   string `json:"openOrders"`
	TargetOrders string `json:"targetOrders"`
	Vault        struct {
		A string `json:"A"`
		B string `json:"B"`
	} `json:"vault"`
	MarketProgramID  string `json:"marketProgramId"`
	MarketID         string `json:"marketId"`
	MarketAuthority  string `json:"marketAuthority"`
	MarketBaseVault  string `json:"marketBaseVault"`
	MarketQuoteVault string `json:"marketQuoteVault"`
	MarketBids       string `json:"marketBids"`
	MarketAsks       string `json:"marketAsks"`
	MarketEventQueue string `json:"marketEventQueue"`
}

type resolvedPoolKeys struct {
	programID    solana.PublicKey
	ammID        solana.PublicKey
	authority    solana.PublicKey
	openOrders   solana.PublicKey
	targetOrders solana.PublicKey
	vaultA       solana.PublicKey
	vaultB       solana.PublicKey

	marketProgram    solana.PublicKey
	market           solana.PublicKey
	marketAuthority  solana.PublicKey
	marketBaseVault  solana.PublicKey
	marketQuoteVault solana.PublicKey
	marketBids       solana.PublicKey
	marketAsks       solana.PublicKey
	marketEventQueue solana.PublicKey
}
