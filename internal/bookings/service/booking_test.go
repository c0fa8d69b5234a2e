package service

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingserrors "renthub/internal/bookings/errors"
	vehicleserrors "renthub/internal/vehicles/errors"
	mongotx "renthub/pkg/db/mongo"
	"renthub/pkg/config"
	"renthub/pkg/events"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/logger"
	"renthub/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testCustomerID = "65a000000000000000000001"
	testOtherID    = "65a000000000000000000002"
	testAdminID    = "65a000000000000000000003"
	testVehicleID  = "65b000000000000000000001"
	testBookingID  = "65c000000000000000000001"
)

type mockBookingRepo struct {
	CreateFn                func(ctx context.Context, booking *model.Booking) error
	FindByIDFn              func(ctx context.Context, id string) (*model.Booking, error)
	FindByCustomerFn        func(ctx context.Context, customerID string) ([]*model.Booking, error)
	UpdateStatusFromFn      func(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error)
	FindActiveEndedBeforeFn func(ctx context.Context, date time.Time) ([]*model.Booking, error)
	CountActiveByVehicleFn  func(ctx context.Context, vehicleID string) (int64, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return m.CreateFn(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.FindByIDFn(ctx, id)
}

func (m *mockBookingRepo) FindByCustomer(ctx context.Context, customerID string) ([]*model.Booking, error) {
	return m.FindByCustomerFn(ctx, customerID)
}

func (m *mockBookingRepo) UpdateStatusFrom(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	return m.UpdateStatusFromFn(ctx, id, from, to)
}

func (m *mockBookingRepo) FindActiveEndedBefore(ctx context.Context, date time.Time) ([]*model.Booking, error) {
	return m.FindActiveEndedBeforeFn(ctx, date)
}

func (m *mockBookingRepo) CountActiveByVehicle(ctx context.Context, vehicleID string) (int64, error) {
	return m.CountActiveByVehicleFn(ctx, vehicleID)
}

// ExecuteTransaction runs the closure directly so the transactional
// logic is exercised without a running mongod.
func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func (m *mockBookingRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockVehicleRepo struct {
	FindByIDFn               func(ctx context.Context, id string) (*model.Vehicle, error)
	FindByIDsFn              func(ctx context.Context, ids []string) (map[string]*model.Vehicle, error)
	UpdateAvailabilityFromFn func(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error)
}

func (m *mockVehicleRepo) Create(ctx context.Context, vehicle *model.Vehicle) error { return nil }

func (m *mockVehicleRepo) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	return m.FindByIDFn(ctx, id)
}

func (m *mockVehicleRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Vehicle, error) {
	return m.FindByIDsFn(ctx, ids)
}

func (m *mockVehicleRepo) FindByRegistration(ctx context.Context, registration string) (*model.Vehicle, error) {
	return nil, vehicleserrors.ErrNotFound
}

func (m *mockVehicleRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, error) {
	return nil, nil
}

func (m *mockVehicleRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockVehicleRepo) Update(ctx context.Context, id string, vehicle *model.Vehicle) error {
	return nil
}

func (m *mockVehicleRepo) UpdateAvailabilityFrom(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error) {
	return m.UpdateAvailabilityFromFn(ctx, id, from, to)
}

func (m *mockVehicleRepo) Delete(ctx context.Context, id string) error        { return nil }
func (m *mockVehicleRepo) EnsureIndexes(ctx context.Context) error            { return nil }

type mockUserRepo struct {
	FindByIDsFn func(ctx context.Context, ids []string) (map[string]*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	return m.FindByIDsFn(ctx, ids)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (m *mockUserRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Count(ctx context.Context) (int64, error)                  { return 0, nil }
func (m *mockUserRepo) Update(ctx context.Context, id string, u *model.User) error { return nil }
func (m *mockUserRepo) Delete(ctx context.Context, id string) error               { return nil }
func (m *mockUserRepo) EnsureIndexes(ctx context.Context) error                   { return nil }

type capturingPublisher struct {
	events []events.BookingEvent
}

func (p *capturingPublisher) PublishBookingEvent(ctx context.Context, evt events.BookingEvent) error {
	p.events = append(p.events, evt)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: "error", Format: logger.FormatText, Service: "test"}),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(
	repo *mockBookingRepo,
	vehicles *mockVehicleRepo,
	users *mockUserRepo,
	publisher events.Publisher,
	now time.Time,
) *bookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:        repo,
		vehicleRepo: vehicles,
		userRepo:    users,
		publisher:   publisher,
		cfg:         testConfig(),
		now:         func() time.Time { return now },
	}
}

func availableVehicle() *model.Vehicle {
	return &model.Vehicle{
		ID:                 testVehicleID,
		VehicleName:        "Toyota Corolla",
		Type:               "car",
		RegistrationNumber: "AB-123-CD",
		DailyRentPrice:     50,
		AvailabilityStatus: model.VehicleAvailable,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

func TestCreateBooking(t *testing.T) {
	customer := model.Principal{ID: testCustomerID, Role: model.RoleCustomer}

	t.Run("prices duration times daily rate", func(t *testing.T) {
		var stored *model.Booking
		repo := &mockBookingRepo{
			CreateFn: func(ctx context.Context, b *model.Booking) error {
				b.ID = testBookingID
				stored = b
				return nil
			},
		}
		vehicles := &mockVehicleRepo{
			FindByIDFn: func(ctx context.Context, id string) (*model.Vehicle, error) {
				return availableVehicle(), nil
			},
			UpdateAvailabilityFromFn: func(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error) {
				if from != model.VehicleAvailable || to != model.VehicleBooked {
					t.Fatalf("unexpected flip %s -> %s", from, to)
				}
				return true, nil
			},
		}
		pub := &capturingPublisher{}
		svc := newTestService(repo, vehicles, &mockUserRepo{}, pub, date(2026, 1, 1))

		created, err := svc.Create(context.Background(), customer, CreateBookingInput{
			VehicleID:     testVehicleID,
			RentStartDate: date(2026, 1, 10),
			RentEndDate:   date(2026, 1, 13),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.TotalPrice != 150 {
			t.Errorf("expected total price 150, got %v", created.TotalPrice)
		}
		if stored.Status != model.BookingActive {
			t.Errorf("expected active status, got %s", stored.Status)
		}
		if stored.CustomerID != testCustomerID {
			t.Errorf("expected customer %s, got %s", testCustomerID, stored.CustomerID)
		}
		if created.Vehicle.VehicleName != "Toyota Corolla" {
			t.Errorf("missing vehicle snapshot: %+v", created.Vehicle)
		}
		if len(pub.events) != 1 || pub.events[0].Type != events.BookingCreated {
			t.Errorf("expected one booking.created event, got %+v", pub.events)
		}
	})

	t.Run("unknown vehicle is not found", func(t *testing.T) {
		vehicles := &mockVehicleRepo{
			FindByIDFn: func(ctx context.Context, id string) (*model.Vehicle, error) {
				return nil, vehicleserrors.ErrNotFound
			},
		}
		svc := newTestService(&mockBookingRepo{}, vehicles, &mockUserRepo{}, nil, date(2026, 1, 1))

		_, err := svc.Create(context.Background(), customer, CreateBookingInput{
			VehicleID:     testVehicleID,
			RentStartDate: date(2026, 1, 10),
			RentEndDate:   date(2026, 1, 5),
		})
		// Existence is checked before the dates even though both fail.
		assertCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("booked vehicle conflicts before date validation", func(t *testing.T) {
		vehicles := &mockVehicleRepo{
			FindByIDFn: func(ctx context.Context, id string) (*model.Vehicle, error) {
				v := availableVehicle()
				v.AvailabilityStatus = model.VehicleBooked
				return v, nil
			},
		}
		svc := newTestService(&mockBookingRepo{}, vehicles, &mockUserRepo{}, nil, date(2026, 1, 1))

		_, err := svc.Create(context.Background(), customer, CreateBookingInput{
			VehicleID:     testVehicleID,
			RentStartDate: date(2026, 1, 10),
			RentEndDate:   date(2026, 1, 5),
		})
		assertCode(t, err, apperrors.CodeConflict)
	})

	t.Run("end date not after start date", func(t *testing.T) {
		vehicles := &mockVehicleRepo{
			FindByIDFn: func(ctx context.Context, id string) (*model.Vehicle, error) {
				return availableVehicle(), nil
			},
		}
		svc := newTestService(&mockBookingRepo{}, vehicles, &mockUserRepo{}, nil, date(2026, 1, 1))

		for _, end := range []time.Time{date(2026, 1, 10), date(2026, 1, 5)} {
			_, err := svc.Create(context.Background(), customer, CreateBookingInput{
				VehicleID:     testVehicleID,
				RentStartDate: date(2026, 1, 10),
				RentEndDate:   end,
			})
			assertCode(t, err, apperrors.CodeInvalidInput)
		}
	})

	t.Run("losing the availability flip is a conflict", func(t *testing.T) {
		repo := &mockBookingRepo{
			CreateFn: func(ctx context.Context, b *model.Booking) error {
				t.Fatal("booking must not be inserted when the flip is lost")
				return nil
			},
		}
		vehicles := &mockVehicleRepo{
			FindByIDFn: func(ctx context.Context, id string) (*model.Vehicle, error) {
				return availableVehicle(), nil
			},
			UpdateAvailabilityFromFn: func(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error) {
				return false, nil
			},
		}
		svc := newTestService(repo, vehicles, &mockUserRepo{}, nil, date(2026, 1, 1))

		_, err := svc.Create(context.Background(), customer, CreateBookingInput{
			VehicleID:     testVehicleID,
			RentStartDate: date(2026, 1, 10),
			RentEndDate:   date(2026, 1, 12),
		})
		assertCode(t, err, apperrors.CodeConflict)
	})
}

func TestListBookings(t *testing.T) {
	bookings := []*model.Booking{
		{ID: testBookingID, CustomerID: testCustomerID, VehicleID: testVehicleID, Status: model.BookingActive},
	}
	vehicles := &mockVehicleRepo{
		FindByIDsFn: func(ctx context.Context, ids []string) (map[string]*model.Vehicle, error) {
			return map[string]*model.Vehicle{testVehicleID: availableVehicle()}, nil
		},
	}
	users := &mockUserRepo{
		FindByIDsFn: func(ctx context.Context, ids []string) (map[string]*model.User, error) {
			return map[string]*model.User{
				testCustomerID: {ID: testCustomerID, Name: "Dana", Email: "dana@example.com"},
			}, nil
		},
	}

	t.Run("customer sees own bookings with vehicle fields", func(t *testing.T) {
		repo := &mockBookingRepo{
			FindByCustomerFn: func(ctx context.Context, customerID string) ([]*model.Booking, error) {
				if customerID != testCustomerID {
					t.Fatalf("expected scope to customer %s, got %q", testCustomerID, customerID)
				}
				return bookings, nil
			},
		}
		svc := newTestService(repo, vehicles, users, nil, date(2026, 1, 1))

		views, err := svc.List(context.Background(), model.Principal{ID: testCustomerID, Role: model.RoleCustomer})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(views) != 1 {
			t.Fatalf("expected 1 view, got %d", len(views))
		}
		v := views[0]
		if v.VehicleName != "Toyota Corolla" || v.VehicleType != "car" {
			t.Errorf("missing vehicle join fields: %+v", v)
		}
		if v.CustomerName != "" || v.CustomerEmail != "" {
			t.Errorf("customer view must not carry customer join fields: %+v", v)
		}
	})

	t.Run("admin sees all bookings with customer fields", func(t *testing.T) {
		repo := &mockBookingRepo{
			FindByCustomerFn: func(ctx context.Context, customerID string) ([]*model.Booking, error) {
				if customerID != "" {
					t.Fatalf("expected unscoped listing, got %q", customerID)
				}
				return bookings, nil
			},
		}
		svc := newTestService(repo, vehicles, users, nil, date(2026, 1, 1))

		views, err := svc.List(context.Background(), model.Principal{ID: testAdminID, Role: model.RoleAdmin})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v := views[0]
		if v.CustomerName != "Dana" || v.CustomerEmail != "dana@example.com" {
			t.Errorf("missing customer join fields: %+v", v)
		}
		if v.VehicleType != "" {
			t.Errorf("admin view does not carry vehicle type: %+v", v)
		}
	})
}

func TestUpdateBookingStatus(t *testing.T) {
	activeBooking := func() *model.Booking {
		return &model.Booking{
			ID:            testBookingID,
			CustomerID:    testCustomerID,
			VehicleID:     testVehicleID,
			RentStartDate: date(2026, 1, 10),
			RentEndDate:   date(2026, 1, 13),
			Status:        model.BookingActive,
		}
	}

	newService := func(booking *model.Booking, now time.Time, pub events.Publisher) (*bookingService, *mockVehicleRepo) {
		repo := &mockBookingRepo{
			FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				if booking == nil {
					return nil, bookingserrors.ErrNotFound
				}
				return booking, nil
			},
			UpdateStatusFromFn: func(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
				if from != model.BookingActive {
					t.Fatalf("transitions must be guarded on active, got from=%s", from)
				}
				updated := *booking
				updated.Status = to
				return &updated, nil
			},
		}
		vehicles := &mockVehicleRepo{
			UpdateAvailabilityFromFn: func(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error) {
				return true, nil
			},
		}
		return newTestService(repo, vehicles, &mockUserRepo{}, pub, now), vehicles
	}

	customer := model.Principal{ID: testCustomerID, Role: model.RoleCustomer}
	admin := model.Principal{ID: testAdminID, Role: model.RoleAdmin}

	t.Run("customer cancels before start date", func(t *testing.T) {
		pub := &capturingPublisher{}
		svc, _ := newService(activeBooking(), date(2026, 1, 9), pub)

		updated, err := svc.UpdateStatus(context.Background(), customer, testBookingID, model.BookingCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Status != model.BookingCancelled {
			t.Errorf("expected cancelled, got %s", updated.Status)
		}
		if len(pub.events) != 1 || pub.events[0].Type != events.BookingCancelled {
			t.Errorf("expected booking.cancelled event, got %+v", pub.events)
		}
	})

	t.Run("customer cannot cancel on or after start date", func(t *testing.T) {
		for _, now := range []time.Time{date(2026, 1, 10), date(2026, 1, 11)} {
			svc, _ := newService(activeBooking(), now, nil)
			_, err := svc.UpdateStatus(context.Background(), customer, testBookingID, model.BookingCancelled)
			assertCode(t, err, apperrors.CodeConflict)
		}
	})

	t.Run("admin cancels regardless of start date", func(t *testing.T) {
		svc, _ := newService(activeBooking(), date(2026, 1, 11), nil)
		updated, err := svc.UpdateStatus(context.Background(), admin, testBookingID, model.BookingCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Status != model.BookingCancelled {
			t.Errorf("expected cancelled, got %s", updated.Status)
		}
	})

	t.Run("customer cannot mark returned", func(t *testing.T) {
		svc, _ := newService(activeBooking(), date(2026, 1, 9), nil)
		_, err := svc.UpdateStatus(context.Background(), customer, testBookingID, model.BookingReturned)
		assertCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("customer cannot touch another customer's booking", func(t *testing.T) {
		other := model.Principal{ID: testOtherID, Role: model.RoleCustomer}
		svc, _ := newService(activeBooking(), date(2026, 1, 9), nil)
		_, err := svc.UpdateStatus(context.Background(), other, testBookingID, model.BookingCancelled)
		assertCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("admin returns an active booking", func(t *testing.T) {
		pub := &capturingPublisher{}
		svc, _ := newService(activeBooking(), date(2026, 1, 14), pub)

		updated, err := svc.UpdateStatus(context.Background(), admin, testBookingID, model.BookingReturned)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Status != model.BookingReturned {
			t.Errorf("expected returned, got %s", updated.Status)
		}
		if len(pub.events) != 1 || pub.events[0].Type != events.BookingReturned {
			t.Errorf("expected booking.returned event, got %+v", pub.events)
		}
	})

	t.Run("terminal bookings reject further transitions", func(t *testing.T) {
		returned := activeBooking()
		returned.Status = model.BookingReturned
		svc, _ := newService(returned, date(2026, 1, 14), nil)
		_, err := svc.UpdateStatus(context.Background(), admin, testBookingID, model.BookingReturned)
		assertCode(t, err, apperrors.CodeConflict)

		cancelled := activeBooking()
		cancelled.Status = model.BookingCancelled
		svc, _ = newService(cancelled, date(2026, 1, 14), nil)
		_, err = svc.UpdateStatus(context.Background(), admin, testBookingID, model.BookingReturned)
		assertCode(t, err, apperrors.CodeConflict)
	})

	t.Run("unknown target status is invalid input", func(t *testing.T) {
		svc, _ := newService(activeBooking(), date(2026, 1, 9), nil)
		_, err := svc.UpdateStatus(context.Background(), admin, testBookingID, model.BookingStatus("archived"))
		assertCode(t, err, apperrors.CodeInvalidInput)
	})

	t.Run("missing booking is not found", func(t *testing.T) {
		svc, _ := newService(nil, date(2026, 1, 9), nil)
		_, err := svc.UpdateStatus(context.Background(), admin, testBookingID, model.BookingCancelled)
		assertCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("concurrent transition surfaces as conflict", func(t *testing.T) {
		booking := activeBooking()
		repo := &mockBookingRepo{
			FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				return booking, nil
			},
			UpdateStatusFromFn: func(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
				return nil, bookingserrors.ErrStatusChanged
			},
		}
		vehicles := &mockVehicleRepo{
			UpdateAvailabilityFromFn: func(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error) {
				return true, nil
			},
		}
		svc := newTestService(repo, vehicles, &mockUserRepo{}, nil, date(2026, 1, 9))

		_, err := svc.UpdateStatus(context.Background(), admin, testBookingID, model.BookingCancelled)
		assertCode(t, err, apperrors.CodeConflict)
	})
}

func TestProcessExpiredBookings(t *testing.T) {
	expired := func(id string) *model.Booking {
		return &model.Booking{
			ID:            id,
			CustomerID:    testCustomerID,
			VehicleID:     testVehicleID,
			RentStartDate: date(2026, 1, 1),
			RentEndDate:   date(2026, 1, 5),
			Status:        model.BookingActive,
		}
	}

	t.Run("returns expired bookings and frees vehicles", func(t *testing.T) {
		var freed []string
		repo := &mockBookingRepo{
			FindActiveEndedBeforeFn: func(ctx context.Context, d time.Time) ([]*model.Booking, error) {
				if !d.Equal(date(2026, 1, 10)) {
					t.Fatalf("expected scan cutoff 2026-01-10, got %v", d)
				}
				return []*model.Booking{expired("b1"), expired("b2")}, nil
			},
			UpdateStatusFromFn: func(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
				if to != model.BookingReturned {
					t.Fatalf("sweep must mark returned, got %s", to)
				}
				b := expired(id)
				b.Status = to
				return b, nil
			},
		}
		vehicles := &mockVehicleRepo{
			UpdateAvailabilityFromFn: func(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error) {
				freed = append(freed, id)
				return true, nil
			},
		}
		pub := &capturingPublisher{}
		svc := newTestService(repo, vehicles, &mockUserRepo{}, pub, date(2026, 1, 10))

		count, err := svc.ProcessExpiredBookings(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 reconciled, got %d", count)
		}
		if len(freed) != 2 {
			t.Errorf("expected 2 vehicle releases, got %d", len(freed))
		}
		for _, evt := range pub.events {
			if evt.Type != events.BookingExpired {
				t.Errorf("expected booking.expired events, got %s", evt.Type)
			}
		}
	})

	t.Run("booking raced away mid-sweep is skipped silently", func(t *testing.T) {
		repo := &mockBookingRepo{
			FindActiveEndedBeforeFn: func(ctx context.Context, d time.Time) ([]*model.Booking, error) {
				return []*model.Booking{expired("b1"), expired("b2")}, nil
			},
			UpdateStatusFromFn: func(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
				if id == "b1" {
					return nil, bookingserrors.ErrStatusChanged
				}
				b := expired(id)
				b.Status = to
				return b, nil
			},
		}
		vehicles := &mockVehicleRepo{
			UpdateAvailabilityFromFn: func(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error) {
				return true, nil
			},
		}
		svc := newTestService(repo, vehicles, &mockUserRepo{}, nil, date(2026, 1, 10))

		count, err := svc.ProcessExpiredBookings(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 reconciled, got %d", count)
		}
	})

	t.Run("per-booking failure does not abort the sweep", func(t *testing.T) {
		repo := &mockBookingRepo{
			FindActiveEndedBeforeFn: func(ctx context.Context, d time.Time) ([]*model.Booking, error) {
				return []*model.Booking{expired("b1"), expired("b2")}, nil
			},
			UpdateStatusFromFn: func(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
				if id == "b1" {
					return nil, errors.New("write concern error")
				}
				b := expired(id)
				b.Status = to
				return b, nil
			},
		}
		vehicles := &mockVehicleRepo{
			UpdateAvailabilityFromFn: func(ctx context.Context, id string, from, to model.AvailabilityStatus) (bool, error) {
				return true, nil
			},
		}
		svc := newTestService(repo, vehicles, &mockUserRepo{}, nil, date(2026, 1, 10))

		count, err := svc.ProcessExpiredBookings(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 reconciled, got %d", count)
		}
	})

	t.Run("empty scan is a no-op", func(t *testing.T) {
		repo := &mockBookingRepo{
			FindActiveEndedBeforeFn: func(ctx context.Context, d time.Time) ([]*model.Booking, error) {
				return nil, nil
			},
		}
		svc := newTestService(repo, &mockVehicleRepo{}, &mockUserRepo{}, nil, date(2026, 1, 10))

		count, err := svc.ProcessExpiredBookings(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 reconciled, got %d", count)
		}
	})
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"three days", date(2026, 1, 10), date(2026, 1, 13), 3},
		{"single day", date(2026, 1, 10), date(2026, 1, 11), 1},
		{"same day", date(2026, 1, 10), date(2026, 1, 10), 0},
		{"end before start", date(2026, 1, 10), date(2026, 1, 5), -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := model.RentalDays(tt.start, tt.end); got != tt.want {
				t.Errorf("RentalDays(%v, %v) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}
