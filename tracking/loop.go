package tracking

import (
	"context"
	"time"
)

// every ejecuta fn de inmediato y luego en cada tick hasta que ctx se cancele.
// El ticker no acumula ticks: si fn tarda más que interval, el siguiente
// tick se descarta en vez de solaparse. Con interval <= 0 fn corre una sola vez.
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	fn(ctx)
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn(ctx)
		}
	}
}
