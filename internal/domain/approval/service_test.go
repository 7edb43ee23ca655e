package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinichq/clinic/internal/domain/appointment"
	"github.com/clinichq/clinic/internal/domain/billing"
	"github.com/clinichq/clinic/internal/domain/booking"
	"github.com/clinichq/clinic/internal/domain/patient"
	"github.com/clinichq/clinic/internal/domain/staff"
	"github.com/clinichq/clinic/internal/platform/notification"
)

// fakeStore backs every repository with shared in-memory maps and emulates
// the transactional semantics the real stack gets from Postgres: RunInTx
// serializes callers (the row lock) and restores a snapshot when the
// function fails (the rollback).
type fakeStore struct {
	mu           sync.Mutex
	requests     map[uuid.UUID]*booking.Request
	patients     map[uuid.UUID]*patient.Patient
	staffRows    map[uuid.UUID]*staff.Staff
	appointments map[uuid.UUID]*appointment.Appointment
	visits       map[uuid.UUID]*appointment.Visit
	transactions map[uuid.UUID]*billing.Transaction
	links        map[uuid.UUID]*billing.Link
	patientSeq   int
	txnSeq       int

	// failOn makes the named operation return an error, for exercising
	// rollback behavior.
	failOn string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:     make(map[uuid.UUID]*booking.Request),
		patients:     make(map[uuid.UUID]*patient.Patient),
		staffRows:    make(map[uuid.UUID]*staff.Staff),
		appointments: make(map[uuid.UUID]*appointment.Appointment),
		visits:       make(map[uuid.UUID]*appointment.Visit),
		transactions: make(map[uuid.UUID]*billing.Transaction),
		links:        make(map[uuid.UUID]*billing.Link),
	}
}

func cloneMap[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := cloneMap(s.requests)
	patients := cloneMap(s.patients)
	appointments := cloneMap(s.appointments)
	visits := cloneMap(s.visits)
	transactions := cloneMap(s.transactions)
	links := cloneMap(s.links)
	patientSeq, txnSeq := s.patientSeq, s.txnSeq

	if err := fn(ctx); err != nil {
		s.requests = requests
		s.patients = patients
		s.appointments = appointments
		s.visits = visits
		s.transactions = transactions
		s.links = links
		s.patientSeq, s.txnSeq = patientSeq, txnSeq
		return err
	}
	return nil
}

// -- Repository adapters over fakeStore --

type fakeBookings struct{ s *fakeStore }

func (r fakeBookings) Create(_ context.Context, req *booking.Request) error {
	req.ID = uuid.New()
	req.Status = booking.StatusPending
	r.s.requests[req.ID] = req
	return nil
}

func (r fakeBookings) GetByID(_ context.Context, id uuid.UUID) (*booking.Request, error) {
	req, ok := r.s.requests[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return req, nil
}

func (r fakeBookings) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Request, error) {
	return r.GetByID(ctx, id)
}

func (r fakeBookings) List(_ context.Context, status string, limit, offset int) ([]*booking.Request, int, error) {
	return nil, 0, nil
}

func (r fakeBookings) MarkApproved(_ context.Context, id uuid.UUID, adminID, notes string, at time.Time) error {
	if r.s.failOn == "mark_approved" {
		return errors.New("injected failure")
	}
	req, ok := r.s.requests[id]
	if !ok {
		return booking.ErrNotFound
	}
	if req.Status != booking.StatusPending {
		return booking.ErrAlreadyDecided
	}
	req.Status = booking.StatusApproved
	req.DecidedBy = &adminID
	req.DecidedAt = &at
	if notes != "" {
		req.AdminNotes = &notes
	}
	return nil
}

func (r fakeBookings) MarkRejected(_ context.Context, id uuid.UUID, adminID, notes string, at time.Time) error {
	return errors.New("not used")
}

type fakePatients struct{ s *fakeStore }

func (r fakePatients) FindOrCreate(_ context.Context, p *patient.Patient) error {
	if r.s.failOn == "find_or_create_patient" {
		return errors.New("injected failure")
	}
	p.Normalize()
	for _, existing := range r.s.patients {
		if existing.MobilePhone == p.MobilePhone &&
			strings.EqualFold(existing.FirstName, p.FirstName) &&
			strings.EqualFold(existing.LastName, p.LastName) {
			*p = *existing
			return nil
		}
	}
	p.ID = uuid.New()
	r.s.patientSeq++
	p.PatientNumber = fmt.Sprintf("PT-%06d", r.s.patientSeq)
	stored := *p
	r.s.patients[p.ID] = &stored
	return nil
}

func (r fakePatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := r.s.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (r fakePatients) GetByNumber(_ context.Context, num string) (*patient.Patient, error) {
	for _, p := range r.s.patients {
		if p.PatientNumber == num {
			return p, nil
		}
	}
	return nil, patient.ErrNotFound
}

func (r fakePatients) FindByIdentity(_ context.Context, first, last, mobile string) (*patient.Patient, error) {
	return nil, patient.ErrNotFound
}

func (r fakePatients) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

func (r fakePatients) Search(_ context.Context, term string, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

type fakeStaff struct{ s *fakeStore }

func (r fakeStaff) Create(_ context.Context, st *staff.Staff) error {
	st.ID = uuid.New()
	r.s.staffRows[st.ID] = st
	return nil
}

func (r fakeStaff) GetByID(_ context.Context, id uuid.UUID) (*staff.Staff, error) {
	st, ok := r.s.staffRows[id]
	if !ok {
		return nil, staff.ErrNotFound
	}
	return st, nil
}

func (r fakeStaff) Update(_ context.Context, st *staff.Staff) error { return nil }

func (r fakeStaff) List(_ context.Context, limit, offset int) ([]*staff.Staff, int, error) {
	return nil, 0, nil
}

func (r fakeStaff) ListByRole(_ context.Context, role staff.Role, limit, offset int) ([]*staff.Staff, int, error) {
	return nil, 0, nil
}

func (r fakeStaff) FirstActiveByRole(_ context.Context, role staff.Role) (*staff.Staff, error) {
	for _, st := range r.s.staffRows {
		if st.Role == role && st.Active {
			return st, nil
		}
	}
	return nil, staff.ErrNotFound
}

type fakeAppointments struct{ s *fakeStore }

func (r fakeAppointments) Create(_ context.Context, a *appointment.Appointment) error {
	if r.s.failOn == "create_appointment" {
		return errors.New("injected failure")
	}
	a.ID = uuid.New()
	r.s.appointments[a.ID] = a
	return nil
}

func (r fakeAppointments) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	return a, nil
}

func (r fakeAppointments) List(_ context.Context, status string, patientID *uuid.UUID, limit, offset int) ([]*appointment.Appointment, int, error) {
	return nil, 0, nil
}

func (r fakeAppointments) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	return nil
}

type fakeVisits struct{ s *fakeStore }

func (r fakeVisits) Create(_ context.Context, v *appointment.Visit) error {
	if r.s.failOn == "create_visit" {
		return errors.New("injected failure")
	}
	v.ID = uuid.New()
	r.s.visits[v.ID] = v
	return nil
}

func (r fakeVisits) GetByID(_ context.Context, id uuid.UUID) (*appointment.Visit, error) {
	v, ok := r.s.visits[id]
	if !ok {
		return nil, appointment.ErrVisitNotFound
	}
	return v, nil
}

func (r fakeVisits) GetByAppointment(_ context.Context, apptID uuid.UUID) (*appointment.Visit, error) {
	for _, v := range r.s.visits {
		if v.AppointmentID == apptID {
			return v, nil
		}
	}
	return nil, appointment.ErrVisitNotFound
}

func (r fakeVisits) List(_ context.Context, status string, limit, offset int) ([]*appointment.Visit, int, error) {
	return nil, 0, nil
}

func (r fakeVisits) UpdateStatus(_ context.Context, id uuid.UUID, status string) error { return nil }

type fakeBilling struct{ s *fakeStore }

func (r fakeBilling) CreateTransaction(_ context.Context, t *billing.Transaction) error {
	if r.s.failOn == "create_transaction" {
		return errors.New("injected failure")
	}
	t.ID = uuid.New()
	r.s.txnSeq++
	t.Code = fmt.Sprintf("TXN-%06d", r.s.txnSeq)
	if t.Status == "" {
		t.Status = billing.StatusPending
	}
	r.s.transactions[t.ID] = t
	return nil
}

func (r fakeBilling) GetTransaction(_ context.Context, id uuid.UUID) (*billing.Transaction, error) {
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, billing.ErrNotFound
	}
	return t, nil
}

func (r fakeBilling) GetByCode(_ context.Context, code string) (*billing.Transaction, error) {
	return nil, billing.ErrNotFound
}

func (r fakeBilling) ListTransactions(_ context.Context, status string, patientID *uuid.UUID, limit, offset int) ([]*billing.Transaction, int, error) {
	return nil, 0, nil
}

func (r fakeBilling) MarkPaid(_ context.Context, id uuid.UUID, method string, amount float64) error {
	return nil
}

func (r fakeBilling) CreateLink(_ context.Context, l *billing.Link) error {
	if r.s.failOn == "create_link" {
		return errors.New("injected failure")
	}
	l.ID = uuid.New()
	r.s.links[l.ID] = l
	return nil
}

func (r fakeBilling) GetLinkByAppointment(_ context.Context, apptID uuid.UUID) (*billing.Link, error) {
	for _, l := range r.s.links {
		if l.AppointmentID == apptID {
			return l, nil
		}
	}
	return nil, billing.ErrLinkNotFound
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (n *recordingNotifier) Send(_ context.Context, templateID, recipient string, data, metadata map[string]string) (*notification.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, templateID)
	if n.fail {
		return nil, errors.New("gateway down")
	}
	return &notification.Notification{TemplateID: templateID, Recipient: recipient}, nil
}

// -- Fixtures --

type fixture struct {
	store    *fakeStore
	svc      *Service
	notifier *recordingNotifier
}

func newFixture() *fixture {
	store := newFakeStore()
	notifier := &recordingNotifier{}
	staffRepo := fakeStaff{store}
	svc := NewService(
		store,
		fakeBookings{store},
		fakePatients{store},
		staffRepo,
		staff.NewAttendingResolver(staffRepo),
		fakeAppointments{store},
		fakeVisits{store},
		fakeBilling{store},
		notifier,
		zerolog.Nop(),
	)
	return &fixture{store: store, svc: svc, notifier: notifier}
}

func (f *fixture) addStaff(role staff.Role, active bool) *staff.Staff {
	st := &staff.Staff{ID: uuid.New(), FullName: "Dr. Reyes", Role: role, Active: active}
	f.store.staffRows[st.ID] = st
	return st
}

func (f *fixture) addPendingRequest(specialistID uuid.UUID) *booking.Request {
	req := &booking.Request{
		ID:               uuid.New(),
		PatientFirstName: "Maria",
		PatientLastName:  "Santos",
		MobilePhone:      "09171234567",
		SpecialistID:     specialistID,
		AppointmentType:  "Consultation",
		ScheduledAt:      time.Now().Add(48 * time.Hour),
		DurationMinutes:  30,
		Price:            500,
		Source:           booking.SourceOnline,
		Status:           booking.StatusPending,
	}
	f.store.requests[req.ID] = req
	return req
}

func (f *fixture) counts() (patients, appointments, visits, transactions, links int) {
	return len(f.store.patients), len(f.store.appointments), len(f.store.visits),
		len(f.store.transactions), len(f.store.links)
}

// -- Tests --

func TestApprove_CreatesFullRecordChain(t *testing.T) {
	f := newFixture()
	doctor := f.addStaff(staff.RoleDoctor, true)
	req := f.addPendingRequest(doctor.ID)

	res, err := f.svc.Approve(context.Background(), req.ID, "admin-1", "ok to proceed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.PatientNumber == "" || !strings.HasPrefix(res.PatientNumber, "PT-") {
		t.Errorf("expected PT- patient number, got %q", res.PatientNumber)
	}
	if res.TransactionCode == "" || !strings.HasPrefix(res.TransactionCode, "TXN-") {
		t.Errorf("expected TXN- code, got %q", res.TransactionCode)
	}

	stored := f.store.requests[req.ID]
	if stored.Status != booking.StatusApproved {
		t.Errorf("expected request approved, got %s", stored.Status)
	}
	if stored.DecidedBy == nil || *stored.DecidedBy != "admin-1" {
		t.Error("expected decided_by recorded")
	}
	if stored.AdminNotes == nil || *stored.AdminNotes != "ok to proceed" {
		t.Error("expected admin notes recorded")
	}

	appt := f.store.appointments[res.AppointmentID]
	if appt == nil {
		t.Fatal("appointment not stored")
	}
	if appt.Status != appointment.StatusConfirmed {
		t.Errorf("expected Confirmed appointment, got %s", appt.Status)
	}
	if appt.PatientID != res.PatientID {
		t.Error("appointment not tied to resolved patient")
	}
	if appt.BookingRequestID == nil || *appt.BookingRequestID != req.ID {
		t.Error("appointment not tied back to the booking request")
	}

	visit := f.store.visits[res.VisitID]
	if visit == nil {
		t.Fatal("visit not stored")
	}
	if visit.AppointmentID != res.AppointmentID {
		t.Error("visit not tied to appointment")
	}
	if visit.AttendingStaffID != doctor.ID {
		t.Error("expected the active doctor as attending staff")
	}
	if visit.Status != appointment.VisitScheduled {
		t.Errorf("expected scheduled visit, got %s", visit.Status)
	}

	txn := f.store.transactions[res.TransactionID]
	if txn == nil {
		t.Fatal("transaction not stored")
	}
	if txn.TotalAmount != req.Price {
		t.Errorf("expected amount %v, got %v", req.Price, txn.TotalAmount)
	}
	if txn.Status != billing.StatusPending {
		t.Errorf("expected pending transaction, got %s", txn.Status)
	}

	link, err := fakeBilling{f.store}.GetLinkByAppointment(context.Background(), res.AppointmentID)
	if err != nil {
		t.Fatal("billing link not stored")
	}
	if link.TransactionID != res.TransactionID {
		t.Error("link ties wrong transaction")
	}

	if len(f.notifier.sent) != 1 || f.notifier.sent[0] != "appointment-confirmed" {
		t.Errorf("expected one confirmation notification, got %v", f.notifier.sent)
	}
}

func TestApprove_SecondAttemptFails(t *testing.T) {
	f := newFixture()
	doctor := f.addStaff(staff.RoleDoctor, true)
	req := f.addPendingRequest(doctor.ID)

	if _, err := f.svc.Approve(context.Background(), req.ID, "admin-1", ""); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	p1, a1, v1, t1, l1 := f.counts()

	_, err := f.svc.Approve(context.Background(), req.ID, "admin-2", "")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	p2, a2, v2, t2, l2 := f.counts()
	if p1 != p2 || a1 != a2 || v1 != v2 || t1 != t2 || l1 != l2 {
		t.Error("second attempt must not create records")
	}
}

func TestApprove_RollbackOnFailure(t *testing.T) {
	for _, failOn := range []string{"create_appointment", "create_visit", "create_transaction", "create_link", "mark_approved"} {
		t.Run(failOn, func(t *testing.T) {
			f := newFixture()
			doctor := f.addStaff(staff.RoleDoctor, true)
			req := f.addPendingRequest(doctor.ID)
			f.store.failOn = failOn

			_, err := f.svc.Approve(context.Background(), req.ID, "admin-1", "")
			if !errors.Is(err, ErrPersistence) {
				t.Fatalf("expected ErrPersistence, got %v", err)
			}

			p, a, v, txn, l := f.counts()
			if p != 0 || a != 0 || v != 0 || txn != 0 || l != 0 {
				t.Errorf("expected empty store after rollback, got %d/%d/%d/%d/%d", p, a, v, txn, l)
			}
			if f.store.requests[req.ID].Status != booking.StatusPending {
				t.Error("request must stay pending after rollback")
			}
			if len(f.notifier.sent) != 0 {
				t.Error("no notification may go out for a failed approval")
			}
		})
	}
}

func TestApprove_DeduplicatesPatients(t *testing.T) {
	f := newFixture()
	doctor := f.addStaff(staff.RoleDoctor, true)

	first := f.addPendingRequest(doctor.ID)
	second := f.addPendingRequest(doctor.ID)
	// same person, differently formatted
	second.PatientFirstName = " maria "
	second.MobilePhone = "0917-123-4567"

	r1, err := f.svc.Approve(context.Background(), first.ID, "admin-1", "")
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	r2, err := f.svc.Approve(context.Background(), second.ID, "admin-1", "")
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}

	if r1.PatientID != r2.PatientID {
		t.Error("expected both approvals to resolve to one patient")
	}
	if r1.PatientNumber != r2.PatientNumber {
		t.Error("expected a single patient number")
	}
	if len(f.store.patients) != 1 {
		t.Errorf("expected 1 patient row, got %d", len(f.store.patients))
	}
	if len(f.store.appointments) != 2 {
		t.Errorf("expected 2 appointments, got %d", len(f.store.appointments))
	}
}

func TestApprove_Concurrent(t *testing.T) {
	f := newFixture()
	doctor := f.addStaff(staff.RoleDoctor, true)
	req := f.addPendingRequest(doctor.ID)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.svc.Approve(context.Background(), req.ID, fmt.Sprintf("admin-%d", n), "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, conflict int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyProcessed):
			conflict++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly one winner, got %d", ok)
	}
	if conflict != workers-1 {
		t.Errorf("expected %d conflicts, got %d", workers-1, conflict)
	}

	p, a, v, txn, l := f.counts()
	if p != 1 || a != 1 || v != 1 || txn != 1 || l != 1 {
		t.Errorf("expected exactly one record chain, got %d/%d/%d/%d/%d", p, a, v, txn, l)
	}
}

func TestApprove_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Approve(context.Background(), uuid.New(), "admin-1", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestApprove_InvalidSpecialist(t *testing.T) {
	f := newFixture()

	// specialist row missing entirely
	req := f.addPendingRequest(uuid.New())
	if _, err := f.svc.Approve(context.Background(), req.ID, "admin-1", ""); !errors.Is(err, ErrInvalidSpecialist) {
		t.Errorf("missing specialist: expected ErrInvalidSpecialist, got %v", err)
	}

	// specialist exists but is inactive
	inactive := f.addStaff(staff.RoleDoctor, false)
	req2 := f.addPendingRequest(inactive.ID)
	if _, err := f.svc.Approve(context.Background(), req2.ID, "admin-1", ""); !errors.Is(err, ErrInvalidSpecialist) {
		t.Errorf("inactive specialist: expected ErrInvalidSpecialist, got %v", err)
	}

	if req.Status != booking.StatusPending || req2.Status != booking.StatusPending {
		t.Error("requests must stay pending after a rejected approval attempt")
	}
}

func TestApprove_AttendingFallsBackToAdmin(t *testing.T) {
	f := newFixture()
	medtech := f.addStaff(staff.RoleMedTech, true)
	admin := f.addStaff(staff.RoleAdmin, true)
	req := f.addPendingRequest(medtech.ID)

	res, err := f.svc.Approve(context.Background(), req.ID, "admin-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attending := f.store.visits[res.VisitID].AttendingStaffID
	if attending != medtech.ID && attending != admin.ID {
		t.Error("attending staff must be the medtech or the fallback admin")
	}
}

func TestRegisterWalkIn(t *testing.T) {
	f := newFixture()
	doctor := f.addStaff(staff.RoleDoctor, true)

	res, err := f.svc.RegisterWalkIn(context.Background(), WalkInInput{
		FirstName:       "Jose",
		LastName:        "Rizal",
		MobilePhone:     "0918 555 1234",
		SpecialistID:    doctor.ID,
		AppointmentType: "Lab Work",
		Price:           350,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	appt := f.store.appointments[res.AppointmentID]
	if appt == nil {
		t.Fatal("appointment not stored")
	}
	if appt.Source != booking.SourceWalkIn {
		t.Errorf("expected WalkIn source, got %s", appt.Source)
	}
	if appt.BookingRequestID != nil {
		t.Error("walk-in appointment must not reference a booking request")
	}
	if appt.Status != appointment.StatusConfirmed {
		t.Errorf("expected Confirmed, got %s", appt.Status)
	}
	if _, ok := f.store.visits[res.VisitID]; !ok {
		t.Error("visit not stored")
	}
	if _, ok := f.store.transactions[res.TransactionID]; !ok {
		t.Error("transaction not stored")
	}
}

func TestRegisterWalkIn_Validation(t *testing.T) {
	f := newFixture()
	doctor := f.addStaff(staff.RoleDoctor, true)

	cases := []WalkInInput{
		{LastName: "Rizal", MobilePhone: "0918", SpecialistID: doctor.ID, AppointmentType: "Lab"},
		{FirstName: "Jose", MobilePhone: "0918", SpecialistID: doctor.ID, AppointmentType: "Lab"},
		{FirstName: "Jose", LastName: "Rizal", SpecialistID: doctor.ID, AppointmentType: "Lab"},
		{FirstName: "Jose", LastName: "Rizal", MobilePhone: "0918", SpecialistID: doctor.ID},
		{FirstName: "Jose", LastName: "Rizal", MobilePhone: "0918", SpecialistID: doctor.ID, AppointmentType: "Lab", Price: -5},
	}
	for i, in := range cases {
		if _, err := f.svc.RegisterWalkIn(context.Background(), in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestApprove_ConfirmationMessageRendersCompletely(t *testing.T) {
	store := newFakeStore()
	sms := &notification.MockSMSSender{}
	manager := notification.NewManager(nil, sms, notification.NewTemplateEngine())
	staffRepo := fakeStaff{store}
	svc := NewService(
		store,
		fakeBookings{store},
		fakePatients{store},
		staffRepo,
		staff.NewAttendingResolver(staffRepo),
		fakeAppointments{store},
		fakeVisits{store},
		fakeBilling{store},
		manager,
		zerolog.Nop(),
	)
	f := &fixture{store: store, svc: svc}
	doctor := f.addStaff(staff.RoleDoctor, true)
	req := f.addPendingRequest(doctor.ID)

	res, err := svc.Approve(context.Background(), req.ID, "admin-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := sms.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 sms, got %d", len(calls))
	}
	body := calls[0].Body
	if strings.Contains(body, "{{") {
		t.Errorf("message has unrendered placeholders: %q", body)
	}
	for _, want := range []string{
		req.AppointmentType,
		req.ScheduledAt.Format("2006-01-02"),
		res.AppointmentID.String(),
	} {
		if !strings.Contains(body, want) {
			t.Errorf("message missing %q: %q", want, body)
		}
	}

	// walk-in confirmations render the same template
	_, err = svc.RegisterWalkIn(context.Background(), WalkInInput{
		FirstName:       "Jose",
		LastName:        "Rizal",
		MobilePhone:     "09185551234",
		SpecialistID:    doctor.ID,
		AppointmentType: "Lab Work",
		ScheduledAt:     time.Now().Add(2 * time.Hour),
		Price:           350,
	})
	if err != nil {
		t.Fatalf("walk-in: %v", err)
	}
	calls = sms.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 sms, got %d", len(calls))
	}
	if strings.Contains(calls[1].Body, "{{") {
		t.Errorf("walk-in message has unrendered placeholders: %q", calls[1].Body)
	}
}

func TestApprove_NotificationFailureDoesNotUndoApproval(t *testing.T) {
	f := newFixture()
	f.notifier.fail = true
	doctor := f.addStaff(staff.RoleDoctor, true)
	req := f.addPendingRequest(doctor.ID)

	res, err := f.svc.Approve(context.Background(), req.ID, "admin-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.store.requests[req.ID].Status != booking.StatusApproved {
		t.Error("approval must stand even when the notification fails")
	}
	if _, ok := f.store.appointments[res.AppointmentID]; !ok {
		t.Error("records must stand even when the notification fails")
	}
}
