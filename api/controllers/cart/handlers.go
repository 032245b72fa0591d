package cart

import (
	"context"
	"net/http"

	cartdto "github.com/angelmondragon/gobacks-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/gobacks-backend/api/responses"
	"github.com/angelmondragon/gobacks-backend/api/validators"
	cartsvc "github.com/angelmondragon/gobacks-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/gobacks-backend/pkg/errors"
	"github.com/angelmondragon/gobacks-backend/pkg/logger"
)

// CartIDParam is the chi route parameter carrying the cart id.
const CartIDParam = "cartId"

// CartCreate handles POST /cart.
func CartCreate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}

		var payload cartdto.CreateCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateCart(r.Context(), toCreateCartInput(payload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartWithItems(result))
	}
}

// CartList handles GET /cart.
func CartList(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}

		carts, err := svc.ListCarts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartList(carts))
	}
}

// CartFetch handles GET /cart/{cartId}.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}

		cartID, err := validators.ParseIDParam(r, CartIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := cartContext(r, logg, cartID)

		result, err := svc.GetCart(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartWithItems(result))
	}
}

// CartDelete handles DELETE /cart/{cartId}.
func CartDelete(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}

		cartID, err := validators.ParseIDParam(r, CartIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := cartContext(r, logg, cartID)

		deleted, err := svc.DeleteCart(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, deleted)
	}
}

// CartMutateItems handles POST /cart/{cartId}: bulk delete then bulk insert.
func CartMutateItems(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}

		cartID, err := validators.ParseIDParam(r, CartIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := cartContext(r, logg, cartID)

		var payload cartdto.MutateItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.MutateItems(ctx, cartID, toMutateItemsInput(payload))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newMutation(result))
	}
}

func cartContext(r *http.Request, logg *logger.Logger, cartID int64) context.Context {
	if logg == nil {
		return r.Context()
	}
	return logg.WithCartID(r.Context(), cartID)
}

func serviceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
}
