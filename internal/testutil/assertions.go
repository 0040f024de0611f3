package testutil

import (
	"errors"
	"math"
	"testing"

	apperrors "valuemap/internal/errors"
	"valuemap/internal/valuation"
)

// floatTolerance absorbs rounding in ratios such as marketCap / (marketCap / pcf).
const floatTolerance = 1e-9

// AssertAppError checks that err is, or wraps, an *AppError with the expected code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	appErr := requireAppError(t, err, expectedCode)
	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertAppErrorStatus checks the code and the HTTP status the error renders as.
func AssertAppErrorStatus(t *testing.T, err error, expectedCode string, expectedStatus int) {
	t.Helper()
	appErr := requireAppError(t, err, expectedCode)
	if appErr.Code != expectedCode || appErr.StatusCode != expectedStatus {
		t.Errorf("expected %s/%d, got %s/%d", expectedCode, expectedStatus, appErr.Code, appErr.StatusCode)
	}
}

func requireAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertValue checks that o is present and within floating-point tolerance of want.
func AssertValue(t *testing.T, name string, o valuation.Optional, want float64) {
	t.Helper()
	got, ok := o.Get()
	if !ok {
		t.Errorf("%s: expected %v, got absent", name, want)
		return
	}
	if math.Abs(got-want) > floatTolerance*math.Max(1, math.Abs(want)) {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

// AssertAbsent checks that o carries no value.
func AssertAbsent(t *testing.T, name string, o valuation.Optional) {
	t.Helper()
	if v, ok := o.Get(); ok {
		t.Errorf("%s: expected absent, got %v", name, v)
	}
}
