package repomanager

import (
	"context"
	"database/sql"

	"github.com/geotrade/marketplace/internal/dbx"
	"github.com/geotrade/marketplace/internal/server/repositories/accounts"
	"github.com/geotrade/marketplace/internal/server/repositories/carts"
	"github.com/geotrade/marketplace/internal/server/repositories/contracts"
	"github.com/geotrade/marketplace/internal/server/repositories/drafts"
	"github.com/geotrade/marketplace/internal/server/repositories/kyc"
	"github.com/geotrade/marketplace/internal/server/repositories/orders"
	"github.com/geotrade/marketplace/internal/server/repositories/payins"
)

// RepositoryManager vends repository implementations bound to either the
// shared connection pool or an open transaction, so services can use the
// same repositories inside and outside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Drafts(db dbx.DBTX) drafts.Repository
	Carts(db dbx.DBTX) carts.Repository
	Orders(db dbx.DBTX) orders.Repository
	PayIns(db dbx.DBTX) payins.Repository
	Kyc(db dbx.DBTX) kyc.Repository
	Contracts(db dbx.DBTX) contracts.Repository
}
