package geocode

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

var mysuru = model.GeoPoint{Lat: 12.2958, Lon: 76.6394}

type stubGeocoder struct {
	mu      sync.Mutex
	calls   []string
	result  Result
	err     error
	waitCtx bool
}

func (s *stubGeocoder) Geocode(ctx context.Context, query string) (Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.mu.Unlock()

	if s.waitCtx {
		<-ctx.Done()
		return Result{}, ctx.Err()
	}
	return s.result, s.err
}

type memoryCache struct {
	data   map[string]Result
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]Result)}
}

func (c *memoryCache) Get(_ context.Context, key string) (Result, bool, error) {
	if c.getErr != nil {
		return Result{}, false, c.getErr
	}
	res, ok := c.data[key]
	return res, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, res Result) error {
	c.data[key] = res
	return nil
}

func testOptions() Options {
	return Options{Region: "Mysuru, Karnataka, India", Timeout: time.Second, Center: mysuru}
}

func TestFallback(t *testing.T) {
	// "abc": 97+98+99 = 294, 294 % 100 - 50 = 44.
	p := Fallback(mysuru, "abc")
	assert.InDelta(t, 12.3398, p.Lat, 1e-9)
	assert.InDelta(t, 76.6834, p.Lon, 1e-9)

	assert.Equal(t, p, Fallback(mysuru, "abc"))

	// Пустой адрес: 0 % 100 - 50 = -50.
	empty := Fallback(mysuru, "")
	assert.InDelta(t, 12.2458, empty.Lat, 1e-9)
	assert.InDelta(t, 76.5894, empty.Lon, 1e-9)
}

func TestFallback_CountsUTF16Units(t *testing.T) {
	// U+1D49C кодируется парой 0xD835 0xDC9C: 55349+56476 = 111825, 25 - 50 = -25.
	p := Fallback(mysuru, "\U0001D49C")
	assert.InDelta(t, 12.2708, p.Lat, 1e-9)
	assert.InDelta(t, 76.6144, p.Lon, 1e-9)
}

func TestFallback_StaysNearCenter(t *testing.T) {
	for _, addr := range []string{"12 MG Road", "Kuvempunagar", "ಮೈಸೂರು ಅರಮನೆ", "x"} {
		p := Fallback(mysuru, addr)
		assert.LessOrEqual(t, p.Lat-mysuru.Lat, 0.05, addr)
		assert.GreaterOrEqual(t, p.Lat-mysuru.Lat, -0.05, addr)
	}
}

func TestResolver_Query(t *testing.T) {
	r := NewResolver(nil, nil, testOptions(), nil, nil)
	assert.Equal(t, "12 MG Road, Mysuru, Karnataka, India", r.Query("  12   MG\tRoad "))

	bare := NewResolver(nil, nil, Options{}, nil, nil)
	assert.Equal(t, "12 MG Road", bare.Query("12 MG Road"))
}

func TestResolver_LookupUsesCache(t *testing.T) {
	geo := &stubGeocoder{result: Result{Point: model.GeoPoint{Lat: 12.3, Lon: 76.65}, DisplayName: "MG Road"}}
	cache := newMemoryCache()
	r := NewResolver(geo, cache, testOptions(), nil, nil)

	first, err := r.Lookup(context.Background(), "12 MG Road")
	require.NoError(t, err)
	second, err := r.Lookup(context.Background(), "12  mg road")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, geo.calls, 1)
	assert.Equal(t, "12 MG Road, Mysuru, Karnataka, India", geo.calls[0])
	assert.Contains(t, cache.data, "geocode:12 mg road, mysuru, karnataka, india")
}

func TestResolver_LookupIgnoresCacheErrors(t *testing.T) {
	geo := &stubGeocoder{result: Result{Point: model.GeoPoint{Lat: 1, Lon: 2}}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")

	core, logs := observer.New(zap.WarnLevel)
	r := NewResolver(geo, cache, testOptions(), zap.New(core), nil)

	res, err := r.Lookup(context.Background(), "Hebbal")
	require.NoError(t, err)
	assert.Equal(t, model.GeoPoint{Lat: 1, Lon: 2}, res.Point)
	assert.Equal(t, 1, logs.FilterMessage("geocode cache read failed").Len())
}

func TestResolver_LookupEmptyAddress(t *testing.T) {
	geo := &stubGeocoder{}
	r := NewResolver(geo, nil, testOptions(), nil, nil)

	_, err := r.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, geo.calls)
}

func TestResolver_ResolveFallsBack(t *testing.T) {
	tests := []struct {
		name string
		geo  Geocoder
	}{
		{name: "not found", geo: &stubGeocoder{err: ErrNotFound}},
		{name: "provider error", geo: &stubGeocoder{err: errors.New("boom")}},
		{name: "no provider", geo: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			r := NewResolver(tt.geo, nil, testOptions(), zap.New(core), nil)

			p := r.Resolve(context.Background(), "abc")
			assert.Equal(t, Fallback(mysuru, "abc"), p)
			assert.Equal(t, 1, logs.FilterMessage("geocoding failed, using fallback coordinates").Len())
		})
	}
}

func TestResolver_ResolveTimeout(t *testing.T) {
	geo := &stubGeocoder{waitCtx: true}
	opts := testOptions()
	opts.Timeout = 20 * time.Millisecond
	r := NewResolver(geo, nil, opts, nil, nil)

	start := time.Now()
	p := r.Resolve(context.Background(), "abc")

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, Fallback(mysuru, "abc"), p)
}

func TestResolver_ResolveDelivery(t *testing.T) {
	geo := &stubGeocoder{result: Result{Point: model.GeoPoint{Lat: 12.31, Lon: 76.62}}}
	r := NewResolver(geo, nil, testOptions(), nil, nil)

	assert.Nil(t, r.ResolveDelivery(context.Background(), ""))
	assert.Nil(t, r.ResolveDelivery(context.Background(), NotProvided))
	assert.Empty(t, geo.calls)

	p := r.ResolveDelivery(context.Background(), "Vijayanagar")
	require.NotNil(t, p)
	assert.Equal(t, model.GeoPoint{Lat: 12.31, Lon: 76.62}, *p)
}
