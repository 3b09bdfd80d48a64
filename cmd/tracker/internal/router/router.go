package router

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/brightsms/momotracker/tracker"
	"github.com/gin-gonic/gin"
)

// Manages the entire setup of the tracking service
type Router struct {
	// Interval between pending count reports
	ReportInterval time.Duration
	// Tracker controller
	Tracker *tracker.Controller
	// Base Gin Group to use for routing
	Base gin.IRoutes
}

const (
	IdParam            = "id"
	PaymentsPath       = "/payments"
	PaymentsPathWithId = PaymentsPath + "/:" + IdParam
	UnsettledPath      = "/unsettled"
)

func (r *Router) createPayment(ctx *gin.Context) {
	var initiate Initiate
	err := ctx.BindJSON(&initiate)
	if err != nil {
		ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	payment, err := r.Tracker.Initiate(ctx, InitiateToTracker(&initiate))
	switch {
	case err == nil:
		out := PaymentFromTracker(&payment)
		ctx.JSON(http.StatusCreated, &out)
	case errors.Is(err, tracker.ErrInvalidAmount), errors.Is(err, tracker.ErrInvalidPhone):
		ctx.AbortWithError(http.StatusBadRequest, err)
	case errors.Is(err, tracker.ErrInitiationFailed):
		ctx.AbortWithError(http.StatusBadGateway, err)
	default:
		ctx.AbortWithError(http.StatusInternalServerError, err)
	}
}

func (r *Router) paymentStatus(ctx *gin.Context) {
	id := ctx.Param(IdParam)

	payment, err := r.Tracker.Query(id)
	switch {
	case err == nil:
		out := PaymentFromTracker(&payment)
		ctx.JSON(http.StatusOK, &out)
	case errors.Is(err, tracker.ErrTransactionNotFound):
		ctx.AbortWithError(http.StatusNotFound, err)
	default:
		ctx.AbortWithError(http.StatusInternalServerError, err)
	}
}

func (r *Router) listPayments(ctx *gin.Context) {
	pending, err := r.Tracker.ListPending()
	if err != nil {
		ctx.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	out := make([]Payment, 0, len(pending))
	for index := range pending {
		out = append(out, PaymentFromTracker(&pending[index]))
	}
	ctx.JSON(http.StatusOK, out)
}

func (r *Router) cancelPayment(ctx *gin.Context) {
	id := ctx.Param(IdParam)

	// Idempotent: cancelling twice or cancelling the unknown is fine
	r.Tracker.Cancel(id)
	ctx.Status(http.StatusNoContent)
}

func (r *Router) listUnsettled(ctx *gin.Context) {
	unsettled, err := r.Tracker.ListUnsettled()
	if err != nil {
		ctx.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	out := make([]Payment, 0, len(unsettled))
	for index := range unsettled {
		out = append(out, PaymentFromTracker(&unsettled[index]))
	}
	ctx.JSON(http.StatusOK, out)
}

// Register routes in the Gin engine
func (r *Router) Register() {
	r.Base.POST(PaymentsPath, r.createPayment)
	r.Base.GET(PaymentsPath, r.listPayments)
	r.Base.GET(PaymentsPathWithId, r.paymentStatus)
	r.Base.DELETE(PaymentsPathWithId, r.cancelPayment)
	r.Base.GET(UnsettledPath, r.listUnsettled)

	go func() {
		ticker := time.NewTicker(r.ReportInterval)
		defer ticker.Stop()

		for {
			pending, err := r.Tracker.ListPending()
			if err != nil {
				log.Println("ERROR|REPORT|PENDING", err)
			} else {
				log.Println("INFO|TRACKING|PENDING", len(pending))
			}

			unsettled, err := r.Tracker.ListUnsettled()
			if err != nil {
				log.Println("ERROR|REPORT|UNSETTLED", err)
			} else if len(unsettled) > 0 {
				log.Println("WARN|RECONCILE|UNSETTLED", len(unsettled))
			}
			<-ticker.C
		}
	}()
}
