package application

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	feeddomain "wmslink/internal/service/filefeed/domain"
	feedport "wmslink/internal/service/filefeed/port"
	orderapp "wmslink/internal/service/order/application"
	orderdomain "wmslink/internal/service/order/domain"
	orderport "wmslink/internal/service/order/port"
)

// IngestionGate runs the scheduled file-feed pipeline for one order type.
// Every step short-circuits on failure: it logs, marks the incoming-log
// record and returns without surfacing an error to the scheduler. Feed
// failures are only observable through logs and the audit table.
type IngestionGate struct {
	typ       orderdomain.OrderType
	blob      feedport.BlobFetcher
	logs      feedport.IncomingLogRepository
	orders    orderport.OrderRepository
	refs      *orderapp.ReferenceValidator
	publisher orderport.EventPublisher
	validator *DocumentValidator

	container string
	path      string
}

func NewIngestionGate(
	typ orderdomain.OrderType,
	blob feedport.BlobFetcher,
	logs feedport.IncomingLogRepository,
	orders orderport.OrderRepository,
	refs *orderapp.ReferenceValidator,
	publisher orderport.EventPublisher,
	container, path string,
) *IngestionGate {
	return &IngestionGate{
		typ:       typ,
		blob:      blob,
		logs:      logs,
		orders:    orders,
		refs:      refs,
		publisher: publisher,
		validator: NewDocumentValidator(),
		container: container,
		path:      path,
	}
}

// Run executes one feed pull end to end.
func (g *IngestionGate) Run(ctx context.Context) {
	content, err := g.blob.Fetch(ctx, g.container, g.path)
	if err != nil {
		log.Error().Str("container", g.container).Str("path", g.path).Err(err).
			Msg("feed fetch failed")
		return
	}
	if strings.TrimSpace(content) == "" {
		log.Warn().Str("container", g.container).Str("path", g.path).
			Msg("feed payload is empty")
		return
	}

	// Audit first: the payload is durably logged no matter what the rest
	// of the pipeline decides.
	rec := feeddomain.NewIncomingLog(content)
	if err := g.logs.Append(ctx, rec); err != nil {
		log.Error().Err(err).Msg("incoming-log append failed")
	}

	doc, result := g.validator.ValidateDocument(content)
	if !result.Valid() {
		g.fail(ctx, rec, "schema validation failed: "+result.Summary())
		return
	}

	if len(doc.Lines) == 0 {
		g.fail(ctx, rec, "order "+doc.OrderNo+" has no lines")
		return
	}

	allPositive, uniform := doc.UniformSign()
	if !uniform {
		g.fail(ctx, rec, "order "+doc.OrderNo+" mixes positive and negative quantities")
		return
	}

	existing, err := g.orders.FindByOrderNo(ctx, g.typ, doc.OrderNo)
	if err != nil && !errors.Is(err, orderdomain.ErrOrderNotFound) {
		g.fail(ctx, rec, "duplicate lookup failed: "+err.Error())
		return
	}
	// A reversal (all-negative) refers to an order we already know about,
	// so it passes the duplicate gate; a repeated new order does not.
	if existing != nil && allPositive {
		g.fail(ctx, rec, "order "+doc.OrderNo+" already exists")
		return
	}

	customer, err := g.refs.ResolveCustomer(ctx, doc.Customer.CustomerNo)
	if err != nil {
		g.fail(ctx, rec, "customer lookup failed: "+err.Error())
		return
	}
	if customer == nil {
		g.fail(ctx, rec, "customer "+doc.Customer.CustomerNo+" not found")
		return
	}

	req := g.toRequest(doc)
	codes := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		codes = append(codes, line.ProductCode)
	}
	products, err := g.refs.ResolveProducts(ctx, codes)
	if err != nil {
		g.fail(ctx, rec, "product resolution failed for order "+doc.OrderNo+": "+err.Error())
		return
	}

	order, err := orderapp.MapOrder(g.typ, req, customer, products)
	if err != nil {
		g.fail(ctx, rec, "mapping failed for order "+doc.OrderNo+": "+err.Error())
		return
	}

	event, err := orderdomain.NewOrderCreatedEvent(order)
	if err != nil {
		g.fail(ctx, rec, "event construction failed for order "+doc.OrderNo+": "+err.Error())
		return
	}
	if err := g.publisher.Publish(ctx, event); err != nil {
		// Publish failures are isolated per order; the reconciliation
		// scheduler replays from the audit table.
		g.fail(ctx, rec, "publish failed for order "+doc.OrderNo+": "+err.Error())
		return
	}

	log.Info().Str("orderNo", doc.OrderNo).Str("type", string(g.typ)).
		Msg("feed order published")
}

func (g *IngestionGate) toRequest(doc *feeddomain.PartnerOrderDocument) orderapp.CreateOrderRequest {
	req := orderapp.CreateOrderRequest{
		OrderID:         doc.OrderNo,
		ProcessingDate:  doc.ProcessingDate,
		CustomerID:      doc.Customer.CustomerNo,
		ShipmentAddress: doc.ShipmentAddress,
	}
	for _, line := range doc.Lines {
		req.Lines = append(req.Lines, orderapp.OrderLineRequest{
			ProductCode: line.Product.ProductCode,
			Quantity:    line.Quantity,
		})
	}
	return req
}

func (g *IngestionGate) fail(ctx context.Context, rec *feeddomain.IncomingLog, msg string) {
	log.Error().Str("logId", rec.ID.String()).Msg(msg)
	if err := g.logs.MarkFailed(ctx, rec.ID.String(), msg); err != nil {
		log.Error().Err(err).Msg("incoming-log update failed")
	}
}
