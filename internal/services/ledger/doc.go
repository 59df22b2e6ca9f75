/*
Package ledger posts money movements against accounts and answers usage
queries over calendar windows.

Every balance change goes through PostTransaction, which locks the account
row, writes the transaction and its balance-history mirror, and stores the
new balance in one database transaction. A transfer is two such postings
sharing a reference id.

Usage:

	svc := ledger.NewService(repo, ledger.Config{}, metrics)

	account, err := svc.CreateAccount(ctx, ledger.CreateAccountRequest{
	    CustomerID: "cust-1",
	    Currency:   "TRY",
	})

	result, err := svc.PostTransaction(ctx, ledger.PostRequest{
	    AccountID:     account.ID,
	    Direction:     models.DirectionCredit,
	    Amount:        decimal.NewFromInt(1000),
	    Currency:      "TRY",
	    OperationType: models.OperationTopUp,
	})

Balances are never cached. Reads always go to the store of record.
*/
package ledger
