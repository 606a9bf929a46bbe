package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"kitty-services/db"
	"kitty-services/types"

	"github.com/go-chi/chi/v5"
	"github.com/ninja-software/terror/v2"
	"github.com/shopspring/decimal"
)

func kittyIDFromURL(r *http.Request) (types.KittyID, error) {
	raw := chi.URLParam(r, "kitty_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, terror.Error(err, "invalid kitty id")
	}
	return types.KittyID(id), nil
}

func accountIDFromURL(r *http.Request) (types.AccountID, error) {
	return types.AccountIDFromString(chi.URLParam(r, "account_id"))
}

type KittyCreateRequest struct {
	Owner types.AccountID `json:"owner"`
}

// KittyCreate mints a new kitty with random dna for the owner.
func (api *API) KittyCreate(w http.ResponseWriter, r *http.Request) (int, error) {
	req := &KittyCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return http.StatusBadRequest, terror.Error(err, "invalid request")
	}
	defer r.Body.Close()

	kitty, err := api.engine.Create(req.Owner)
	trackOp("create", err)
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, kitty)
}

type KittyBreedRequest struct {
	Caller   types.AccountID `json:"caller"`
	FirstID  types.KittyID   `json:"first_id"`
	SecondID types.KittyID   `json:"second_id"`
}

// KittyBreed derives a child kitty from two of the caller's kitties.
func (api *API) KittyBreed(w http.ResponseWriter, r *http.Request) (int, error) {
	req := &KittyBreedRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return http.StatusBadRequest, terror.Error(err, "invalid request")
	}
	defer r.Body.Close()

	child, err := api.engine.Breed(req.Caller, req.FirstID, req.SecondID)
	trackOp("breed", err)
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, child)
}

type KittyTransferRequest struct {
	Caller   types.AccountID `json:"caller"`
	Receiver types.AccountID `json:"receiver"`
}

// KittyTransfer moves a kitty between accounts and clears its listing.
func (api *API) KittyTransfer(w http.ResponseWriter, r *http.Request) (int, error) {
	id, err := kittyIDFromURL(r)
	if err != nil {
		return http.StatusBadRequest, err
	}

	req := &KittyTransferRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return http.StatusBadRequest, terror.Error(err, "invalid request")
	}
	defer r.Body.Close()

	err = api.engine.Transfer(req.Caller, req.Receiver, id)
	trackOp("transfer", err)
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, map[string]string{"status": "ok"})
}

type KittyUpdatePriceRequest struct {
	Caller types.AccountID `json:"caller"`
	// Price null or absent delists the kitty.
	Price *decimal.Decimal `json:"price"`
}

// KittyUpdatePrice lists, reprices, or delists the caller's kitty.
func (api *API) KittyUpdatePrice(w http.ResponseWriter, r *http.Request) (int, error) {
	id, err := kittyIDFromURL(r)
	if err != nil {
		return http.StatusBadRequest, err
	}

	req := &KittyUpdatePriceRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return http.StatusBadRequest, terror.Error(err, "invalid request")
	}
	defer r.Body.Close()

	err = api.engine.SetPrice(req.Caller, id, req.Price)
	trackOp("set_price", err)
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, map[string]string{"status": "ok"})
}

type KittyBuyRequest struct {
	Caller types.AccountID `json:"caller"`
}

// KittyBuy purchases a listed kitty for the listed price.
func (api *API) KittyBuy(w http.ResponseWriter, r *http.Request) (int, error) {
	id, err := kittyIDFromURL(r)
	if err != nil {
		return http.StatusBadRequest, err
	}

	req := &KittyBuyRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return http.StatusBadRequest, terror.Error(err, "invalid request")
	}
	defer r.Body.Close()

	kitty, err := api.engine.Buy(req.Caller, id)
	trackOp("buy", err)
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, kitty)
}

// KittyGet returns a single kitty with its listing, if any.
func (api *API) KittyGet(w http.ResponseWriter, r *http.Request) (int, error) {
	id, err := kittyIDFromURL(r)
	if err != nil {
		return http.StatusBadRequest, err
	}

	var kitty *types.Kitty
	var listing *types.Listing
	err = api.store.View(func(tx *db.Tx) error {
		kitty, err = api.store.Kitty(tx, id)
		if err != nil {
			return err
		}
		listing, err = api.store.Listing(tx, id)
		return err
	})
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, struct {
		*types.Kitty
		Gender  types.Gender   `json:"gender"`
		Listing *types.Listing `json:"listing,omitempty"`
	}{
		Kitty:   kitty,
		Gender:  kitty.Gender(),
		Listing: listing,
	})
}

// AccountKitties returns every kitty held by an account.
func (api *API) AccountKitties(w http.ResponseWriter, r *http.Request) (int, error) {
	owner, err := accountIDFromURL(r)
	if err != nil {
		return http.StatusBadRequest, err
	}

	var result []*types.Kitty
	err = api.store.View(func(tx *db.Tx) error {
		result, err = api.store.KittiesByOwner(tx, owner)
		return err
	})
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, result)
}

// AccountBalance returns an account's currency balance.
func (api *API) AccountBalance(w http.ResponseWriter, r *http.Request) (int, error) {
	account, err := accountIDFromURL(r)
	if err != nil {
		return http.StatusBadRequest, err
	}

	var balance decimal.Decimal
	err = api.store.View(func(tx *db.Tx) error {
		balance, err = api.store.Balance(tx, account)
		return err
	})
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, map[string]decimal.Decimal{"balance": balance})
}

type FaucetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// AccountFaucet credits an account for development and testing. Not routed
// in production.
func (api *API) AccountFaucet(w http.ResponseWriter, r *http.Request) (int, error) {
	account, err := accountIDFromURL(r)
	if err != nil {
		return http.StatusBadRequest, err
	}

	req := &FaucetRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return http.StatusBadRequest, terror.Error(err, "invalid request")
	}
	defer r.Body.Close()

	err = api.store.Update(func(tx *db.Tx) error {
		return api.store.Deposit(tx, account, req.Amount)
	})
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, map[string]string{"status": "ok"})
}

// ListingsList returns every active listing.
func (api *API) ListingsList(w http.ResponseWriter, r *http.Request) (int, error) {
	var result []*db.ListingEntry
	err := api.store.View(func(tx *db.Tx) error {
		var err error
		result, err = api.store.Listings(tx)
		return err
	})
	if err != nil {
		return codeFor(err), err
	}

	return writeJSON(w, result)
}
