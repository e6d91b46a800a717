package internal

import "expvar"

var (
	eventsTotal    = expvar.NewMap("mmnotify_events_total")
	deliveries     = expvar.NewMap("mmnotify_deliveries_total")
	deliveryErrors = expvar.NewMap("mmnotify_delivery_errors_total")
)

func IncEvent(name string) {
	eventsTotal.Add(name, 1)
}

func IncDelivery(sink string) {
	deliveries.Add(sink, 1)
}

func IncDeliveryError(sink string) {
	deliveryErrors.Add(sink, 1)
}
