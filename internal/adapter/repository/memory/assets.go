package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// AssetInfo describes a deployed sandbox asset.
type AssetInfo struct {
	Address common.Address `json:"address"`
	Kind    string         `json:"kind"`
	Name    string         `json:"name"`
	Symbol  string         `json:"symbol"`
}

// Asset kinds.
const (
	KindFungible    = "fungible"
	KindNonFungible = "non_fungible"
)

// Assets implements usecase.AssetRegistry over sandbox tokens. Deployed
// addresses derive from the deployer address and a nonce, the way contract
// creation addresses do.
type Assets struct {
	state    *State
	deployer common.Address

	mu          sync.RWMutex
	nonce       uint64
	fungible    map[common.Address]*FungibleToken
	nonFungible map[common.Address]*NonFungibleToken
}

// NewAssets creates an empty registry deploying from deployer.
func NewAssets(state *State, deployer common.Address) *Assets {
	return &Assets{
		state:       state,
		deployer:    deployer,
		fungible:    make(map[common.Address]*FungibleToken),
		nonFungible: make(map[common.Address]*NonFungibleToken),
	}
}

// Deployer returns the address tokens are deployed from.
func (a *Assets) Deployer() common.Address {
	return a.deployer
}

// NextAddress derives a fresh contract address.
func (a *Assets) NextAddress() common.Address {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nextAddressLocked()
}

func (a *Assets) nextAddressLocked() common.Address {
	addr := ethcrypto.CreateAddress(a.deployer, a.nonce)
	a.nonce++
	return addr
}

// DeployFungible creates and registers a fungible token.
func (a *Assets) DeployFungible(name, symbol string) *FungibleToken {
	a.mu.Lock()
	defer a.mu.Unlock()
	token := NewFungibleToken(a.state, a.nextAddressLocked(), name, symbol)
	a.fungible[token.Address()] = token
	return token
}

// DeployNonFungible creates and registers a non-fungible collection.
func (a *Assets) DeployNonFungible(name, symbol string) *NonFungibleToken {
	a.mu.Lock()
	defer a.mu.Unlock()
	token := NewNonFungibleToken(a.state, a.nextAddressLocked(), name, symbol)
	a.nonFungible[token.Address()] = token
	return token
}

// Fungible resolves a fungible asset.
func (a *Assets) Fungible(_ context.Context, addr common.Address) (usecase.FungibleAsset, error) {
	token, err := a.FungibleToken(addr)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// NonFungible resolves a non-fungible asset.
func (a *Assets) NonFungible(_ context.Context, addr common.Address) (usecase.NonFungibleAsset, error) {
	token, err := a.NonFungibleToken(addr)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// FungibleToken returns the concrete sandbox token at addr.
func (a *Assets) FungibleToken(addr common.Address) (*FungibleToken, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	token, ok := a.fungible[addr]
	if !ok {
		return nil, fmt.Errorf("%w: fungible %s", domain.ErrAssetNotFound, addr.Hex())
	}
	return token, nil
}

// NonFungibleToken returns the concrete sandbox collection at addr.
func (a *Assets) NonFungibleToken(addr common.Address) (*NonFungibleToken, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	token, ok := a.nonFungible[addr]
	if !ok {
		return nil, fmt.Errorf("%w: non-fungible %s", domain.ErrAssetNotFound, addr.Hex())
	}
	return token, nil
}

// List returns every deployed asset ordered by address.
func (a *Assets) List() []AssetInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	infos := make([]AssetInfo, 0, len(a.fungible)+len(a.nonFungible))
	for _, t := range a.fungible {
		infos = append(infos, AssetInfo{Address: t.Address(), Kind: KindFungible, Name: t.Name(), Symbol: t.Symbol()})
	}
	for _, t := range a.nonFungible {
		infos = append(infos, AssetInfo{Address: t.Address(), Kind: KindNonFungible, Name: t.Name(), Symbol: t.Symbol()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Address.Cmp(infos[j].Address) < 0 })
	return infos
}
