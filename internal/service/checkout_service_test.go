package service

import (
	"context"
	"errors"
	"testing"

	"payment-core/config"
	"payment-core/internal/core/domain"
	"payment-core/internal/core/ports"
	"payment-core/internal/core/ports/mocks"
	"payment-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubFactory returns the same adapter for every routing decision.
type stubFactory struct {
	adapter ports.GatewayAdapter
}

func (f stubFactory) ByAmount(int64) ports.GatewayAdapter { return f.adapter }
func (f stubFactory) ByName(string) ports.GatewayAdapter  { return f.adapter }

func checkoutGatewaysConfig() config.GatewaysConfig {
	return config.GatewaysConfig{
		Wayl:                 config.GatewayConfig{APIKey: "wk", WebhookSecret: "wayl-cb-secret"},
		ZainDirect:           config.GatewayConfig{APIKey: "zk", WebhookSecret: "zain-cb-secret"},
		LargeAmountThreshold: 500000,
		WebhookBaseURL:       "https://shop.example.com/api/webhooks/payment",
		RedirectionURL:       "https://shop.example.com/orders/thanks",
	}
}

func TestCreateCheckout_RejectsNonPositiveAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No adapter expectations: validation must reject before any gateway call.
	adapter := mocks.NewMockGatewayAdapter(ctrl)
	svc := NewCheckoutService(stubFactory{adapter}, checkoutGatewaysConfig(), zerolog.Nop())

	for _, amount := range []int64{-5, 0} {
		_, err := svc.CreateCheckout(context.Background(), ports.CheckoutInput{
			Amount:      amount,
			Description: "Premium plan",
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount))
	}
}

func TestCreateCheckout_RejectsEmptyDescription(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adapter := mocks.NewMockGatewayAdapter(ctrl)
	svc := NewCheckoutService(stubFactory{adapter}, checkoutGatewaysConfig(), zerolog.Nop())

	_, err := svc.CreateCheckout(context.Background(), ports.CheckoutInput{Amount: 1000})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Description is required", appErr.Message)
}

func TestCreateCheckout_RejectsUnsupportedCurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adapter := mocks.NewMockGatewayAdapter(ctrl)
	svc := NewCheckoutService(stubFactory{adapter}, checkoutGatewaysConfig(), zerolog.Nop())

	_, err := svc.CreateCheckout(context.Background(), ports.CheckoutInput{
		Amount:      1000,
		Currency:    "USD",
		Description: "Premium plan",
	})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "USD")
}

func TestCreateCheckout_GeneratesReferenceIDWhenAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adapter := mocks.NewMockGatewayAdapter(ctrl)
	adapter.EXPECT().Name().Return("wayl").AnyTimes()

	var gotReq domain.CheckoutRequest
	adapter.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
			gotReq = req
			return &domain.CheckoutSession{URL: "https://pay.example/s/1"}, nil
		})

	svc := NewCheckoutService(stubFactory{adapter}, checkoutGatewaysConfig(), zerolog.Nop())
	session, err := svc.CreateCheckout(context.Background(), ports.CheckoutInput{
		Amount:      1000,
		Description: "Subscription: Premium for user@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/s/1", session.URL)
	_, parseErr := uuid.Parse(gotReq.ReferenceID)
	assert.NoError(t, parseErr, "generated reference id should be a UUID")
	assert.Equal(t, "IQD", gotReq.Currency, "currency defaults to IQD")
}

func TestCreateCheckout_PassesThroughCallerFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adapter := mocks.NewMockGatewayAdapter(ctrl)
	adapter.EXPECT().Name().Return("wayl").AnyTimes()

	var gotReq domain.CheckoutRequest
	adapter.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
			gotReq = req
			return &domain.CheckoutSession{URL: "https://pay.example/s/2"}, nil
		})

	svc := NewCheckoutService(stubFactory{adapter}, checkoutGatewaysConfig(), zerolog.Nop())
	_, err := svc.CreateCheckout(context.Background(), ports.CheckoutInput{
		ReferenceID: "ref-123",
		Amount:      1000,
		Currency:    "IQD",
		Description: "Premium plan",
	})

	require.NoError(t, err)
	assert.Equal(t, "ref-123", gotReq.ReferenceID)
	assert.Equal(t, "https://shop.example.com/api/webhooks/payment?provider=wayl", gotReq.WebhookURL)
	assert.Equal(t, "wayl-cb-secret", gotReq.WebhookSecret)
	assert.Equal(t, "https://shop.example.com/orders/thanks", gotReq.RedirectionURL)
}

func TestCreateCheckout_UsesZainSecretForZainRouting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adapter := mocks.NewMockGatewayAdapter(ctrl)
	adapter.EXPECT().Name().Return("zain-direct").AnyTimes()

	var gotReq domain.CheckoutRequest
	adapter.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
			gotReq = req
			return &domain.CheckoutSession{URL: "https://pay.example/s/3"}, nil
		})

	svc := NewCheckoutService(stubFactory{adapter}, checkoutGatewaysConfig(), zerolog.Nop())
	_, err := svc.CreateCheckout(context.Background(), ports.CheckoutInput{
		Amount:      600000,
		Description: "Wholesale order",
	})

	require.NoError(t, err)
	assert.Equal(t, "zain-cb-secret", gotReq.WebhookSecret)
	assert.Equal(t, "https://shop.example.com/api/webhooks/payment?provider=zain-direct", gotReq.WebhookURL)
}

func TestCreateCheckout_PropagatesAdapterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adapter := mocks.NewMockGatewayAdapter(ctrl)
	adapter.EXPECT().Name().Return("wayl").AnyTimes()
	adapter.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrPaymentCreation("", errors.New("timeout")))

	svc := NewCheckoutService(stubFactory{adapter}, checkoutGatewaysConfig(), zerolog.Nop())
	_, err := svc.CreateCheckout(context.Background(), ports.CheckoutInput{
		Amount:      1000,
		Description: "Premium plan",
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentCreation))
}
