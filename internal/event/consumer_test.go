package event

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/utafrali/searchfeed/pkg/kafka"

	"github.com/utafrali/searchfeed/internal/domain"
	"github.com/utafrali/searchfeed/internal/export"
	"github.com/utafrali/searchfeed/internal/repository"
)

// --- Mocks ---

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) Search(ctx context.Context, c repository.Criteria) ([]domain.Product, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalogRepository) SearchIDs(ctx context.Context, c repository.Criteria) (*repository.IDResult, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.IDResult), args.Error(1)
}

func (m *mockCatalogRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

type mockChannelRepository struct {
	mock.Mock
}

func (m *mockChannelRepository) GetByID(ctx context.Context, id string) (*domain.SalesChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesChannel), args.Error(1)
}

func (m *mockChannelRepository) GetDefault(ctx context.Context) (*domain.SalesChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesChannel), args.Error(1)
}

type mockSettingsStore struct {
	mock.Mock
}

func (m *mockSettingsStore) Get(ctx context.Context, key, channelID string) (string, error) {
	args := m.Called(ctx, key, channelID)
	return args.String(0), args.Error(1)
}

func (m *mockSettingsStore) Set(ctx context.Context, key, value, channelID string) error {
	args := m.Called(ctx, key, value, channelID)
	return args.Error(0)
}

func (m *mockSettingsStore) ShopkeyBindings(ctx context.Context) ([]domain.ShopkeyBinding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShopkeyBinding), args.Error(1)
}

func (m *mockSettingsStore) BindShopkey(ctx context.Context, shopkey string, channelID *string) error {
	args := m.Called(ctx, shopkey, channelID)
	return args.Error(0)
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) PushUpdate(ctx context.Context, shopkey string, item *domain.ExportItem) error {
	args := m.Called(ctx, shopkey, item)
	return args.Error(0)
}

func (m *mockPusher) PushDelete(ctx context.Context, shopkey, productID string) error {
	args := m.Called(ctx, shopkey, productID)
	return args.Error(0)
}

type stubRoutes struct{}

func (s *stubRoutes) GenerateAbsoluteURL(route string, params map[string]string) string {
	return "http://localhost:8000/detail/" + params["productId"]
}

func (s *stubRoutes) GenerateAbsolutePath(route string, params map[string]string) string {
	return "/navigation/" + params["navigationId"]
}

// --- Test Helpers ---

const testShopkey = "ABCDABCDABCDABCDABCDABCDABCDABCD"

type consumerFixture struct {
	catalog  *mockCatalogRepository
	channels *mockChannelRepository
	settings *mockSettingsStore
	pusher   *mockPusher
	consumer *Consumer
}

func newConsumerFixture() *consumerFixture {
	catalog := new(mockCatalogRepository)
	channels := new(mockChannelRepository)
	settings := new(mockSettingsStore)
	pusher := new(mockPusher)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := export.NewURLResolver(&stubRoutes{})
	items := export.NewItemBuilder(resolver, export.NewLinearizer(catalog), logger)
	exporter := export.NewExporter(catalog, channels, settings, items, logger)

	return &consumerFixture{
		catalog:  catalog,
		channels: channels,
		settings: settings,
		pusher:   pusher,
		consumer: NewConsumer(exporter, settings, pusher, logger),
	}
}

func (f *consumerFixture) bindShopkey() {
	f.settings.On("ShopkeyBindings", mock.Anything).Return([]domain.ShopkeyBinding{
		{Shopkey: testShopkey},
	}, nil)
	f.channels.On("GetDefault", mock.Anything).Return(&domain.SalesChannel{
		ID:                   "channel-1",
		LanguageID:           "lang-en",
		NavigationCategoryID: "root-cat",
		IsDefault:            true,
	}, nil)
}

func productEvent(t *testing.T, eventType, productID string) *pkgkafka.Event {
	t.Helper()
	ev, err := pkgkafka.NewEvent(eventType, productID, "product", "catalog-service",
		map[string]string{"id": productID})
	require.NoError(t, err)
	return ev
}

func exportable(id string) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       "Widget",
		Attributes: map[string]string{"color": "blue"},
		Prices:     []domain.Price{{Gross: 1999, Currency: "EUR"}},
		Categories: []domain.Category{{ID: "cat-1"}},
	}
}

// --- Tests ---

func TestHandleProductUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes the rebuilt item per bound shopkey", func(t *testing.T) {
		f := newConsumerFixture()
		f.bindShopkey()
		f.catalog.On("SearchIDs", mock.Anything, mock.Anything).
			Return(&repository.IDResult{Total: 1}, nil)
		f.catalog.On("Search", mock.Anything, mock.Anything).
			Return([]domain.Product{exportable("p1")}, nil)
		f.pusher.On("PushUpdate", mock.Anything, testShopkey, mock.Anything).Return(nil)

		err := f.consumer.Handle(ctx, productEvent(t, TopicProductUpdated, "p1"))

		require.NoError(t, err)
		f.pusher.AssertCalled(t, "PushUpdate", mock.Anything, testShopkey, mock.Anything)
		f.pusher.AssertNotCalled(t, "PushDelete")
	})

	t.Run("no longer exportable product is deleted from the index", func(t *testing.T) {
		f := newConsumerFixture()
		f.bindShopkey()
		f.catalog.On("SearchIDs", mock.Anything, mock.Anything).
			Return(&repository.IDResult{Total: 0}, nil)
		f.catalog.On("Search", mock.Anything, mock.Anything).
			Return([]domain.Product{}, nil)
		f.pusher.On("PushDelete", mock.Anything, testShopkey, "p1").Return(nil)

		err := f.consumer.Handle(ctx, productEvent(t, TopicProductUpdated, "p1"))

		require.NoError(t, err)
		f.pusher.AssertCalled(t, "PushDelete", mock.Anything, testShopkey, "p1")
		f.pusher.AssertNotCalled(t, "PushUpdate")
	})

	t.Run("push failure does not fail the event", func(t *testing.T) {
		f := newConsumerFixture()
		f.bindShopkey()
		f.catalog.On("SearchIDs", mock.Anything, mock.Anything).
			Return(&repository.IDResult{Total: 1}, nil)
		f.catalog.On("Search", mock.Anything, mock.Anything).
			Return([]domain.Product{exportable("p1")}, nil)
		f.pusher.On("PushUpdate", mock.Anything, testShopkey, mock.Anything).
			Return(assert.AnError)

		err := f.consumer.Handle(ctx, productEvent(t, TopicProductUpdated, "p1"))

		assert.NoError(t, err)
	})
}

func TestHandleProductDeleted(t *testing.T) {
	ctx := context.Background()

	f := newConsumerFixture()
	f.settings.On("ShopkeyBindings", mock.Anything).Return([]domain.ShopkeyBinding{
		{Shopkey: testShopkey},
	}, nil)
	f.pusher.On("PushDelete", mock.Anything, testShopkey, "p1").Return(nil)

	err := f.consumer.Handle(ctx, productEvent(t, TopicProductDeleted, "p1"))

	require.NoError(t, err)
	f.pusher.AssertExpectations(t)
}

func TestHandleMalformedEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("missing product id", func(t *testing.T) {
		f := newConsumerFixture()
		ev := productEvent(t, TopicProductUpdated, "p1")
		ev.Data = []byte(`{}`)

		err := f.consumer.Handle(ctx, ev)

		require.Error(t, err)
		f.settings.AssertNotCalled(t, "ShopkeyBindings")
	})

	t.Run("unparseable payload", func(t *testing.T) {
		f := newConsumerFixture()
		ev := productEvent(t, TopicProductUpdated, "p1")
		ev.Data = []byte(`not json`)

		err := f.consumer.Handle(ctx, ev)

		assert.Error(t, err)
	})
}
