package vault

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	"github.com/openalpha/options-vault/x/vault/keeper"
	"github.com/openalpha/options-vault/x/vault/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for vault
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgCreateVault{}, "vault/MsgCreateVault", nil)
	cdc.RegisterConcrete(&types.MsgDeposit{}, "vault/MsgDeposit", nil)
	cdc.RegisterConcrete(&types.MsgUnsubscribe{}, "vault/MsgUnsubscribe", nil)
	cdc.RegisterConcrete(&types.MsgClaim{}, "vault/MsgClaim", nil)
	cdc.RegisterConcrete(&types.MsgHarvest{}, "vault/MsgHarvest", nil)
	cdc.RegisterConcrete(&types.MsgActivate{}, "vault/MsgActivate", nil)
	cdc.RegisterConcrete(&types.MsgSettle{}, "vault/MsgSettle", nil)
	cdc.RegisterConcrete(&types.MsgNewBid{}, "vault/MsgNewBid", nil)
	cdc.RegisterConcrete(&types.MsgExercise{}, "vault/MsgExercise", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&types.MsgCreateVault{},
		&types.MsgDeposit{},
		&types.MsgUnsubscribe{},
		&types.MsgClaim{},
		&types.MsgHarvest{},
		&types.MsgActivate{},
		&types.MsgSettle{},
		&types.MsgNewBid{},
		&types.MsgExercise{},
	)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return nil
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	return nil
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {
	// TODO: Register gRPC gateway routes when proto generation is set up
}

// AppModule implements an application module for the vault module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	// Register MsgServer
	// Note: In a full implementation, you would register the proto-generated server
	// For now, we'll use the custom MsgServer
	_ = keeper.NewMsgServerImpl(am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}

// EndBlocker is called at the end of each block. It audits every
// ledger's balance/share invariant and surfaces violations.
func (am AppModule) EndBlocker(ctx sdk.Context) error {
	return am.keeper.EndBlocker(ctx)
}
