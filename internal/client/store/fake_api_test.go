package store

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/medisync/internal/client/models"
)

// fakeAPI returns canned values. hooks run before a method returns, keyed
// by method name, so tests can order concurrent calls.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
	hooks map[string]func()

	user      models.User
	userErr   error
	meds      []models.Medication
	medsErr   error
	logs      []models.AdherenceLog
	logsErr   error
	alerts    []models.Alert
	alertsErr error

	takeErr   error
	batchErr  error
	taken     []int64
	batchIDs  []int64
	updated   models.Medication
	updateErr error
	deleteErr error
	created   models.Medication
	createErr error

	auth    models.AuthResult
	authErr error

	groups         []models.MedicationGroup
	groupsErr      error
	createdGroup   models.MedicationGroup
	createGroupErr error
	deletedGroups  []int64
	deleteGroupErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}, hooks: map[string]func(){}}
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	hook := f.hooks[name]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) setHook(name string, fn func()) {
	f.mu.Lock()
	f.hooks[name] = fn
	f.mu.Unlock()
}

func (f *fakeAPI) Login(context.Context, models.Credentials) (models.AuthResult, error) {
	f.hit("Login")
	return f.auth, f.authErr
}

func (f *fakeAPI) Register(context.Context, models.Registration) (models.AuthResult, error) {
	f.hit("Register")
	return f.auth, f.authErr
}

func (f *fakeAPI) Me(context.Context) (models.User, error) {
	f.hit("Me")
	return f.user, f.userErr
}

func (f *fakeAPI) Medications(context.Context) ([]models.Medication, error) {
	f.hit("Medications")
	if f.medsErr != nil {
		return nil, f.medsErr
	}
	out := make([]models.Medication, len(f.meds))
	for i, m := range f.meds {
		out[i] = m.Clone()
	}
	return out, nil
}

func (f *fakeAPI) CreateMedication(context.Context, models.MedicationInput) (models.Medication, error) {
	f.hit("CreateMedication")
	return f.created, f.createErr
}

func (f *fakeAPI) UpdateMedication(context.Context, int64, models.MedicationPatch) (models.Medication, error) {
	f.hit("UpdateMedication")
	return f.updated, f.updateErr
}

func (f *fakeAPI) DeleteMedication(context.Context, int64) error {
	f.hit("DeleteMedication")
	return f.deleteErr
}

func (f *fakeAPI) TodayLogs(context.Context) ([]models.AdherenceLog, error) {
	f.hit("TodayLogs")
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	out := make([]models.AdherenceLog, len(f.logs))
	for i, l := range f.logs {
		out[i] = l.Clone()
	}
	return out, nil
}

func (f *fakeAPI) TakeLog(_ context.Context, id int64) (models.AdherenceLog, error) {
	f.hit("TakeLog")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takeErr != nil {
		return models.AdherenceLog{}, f.takeErr
	}
	f.taken = append(f.taken, id)
	return models.AdherenceLog{ID: id, Status: models.StatusTaken}, nil
}

func (f *fakeAPI) BatchTake(_ context.Context, ids []int64) error {
	f.hit("BatchTake")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchIDs = append(f.batchIDs, ids...)
	return f.batchErr
}

func (f *fakeAPI) Alerts(context.Context) ([]models.Alert, error) {
	f.hit("Alerts")
	return f.alerts, f.alertsErr
}

func (f *fakeAPI) MedicationGroups(context.Context) ([]models.MedicationGroup, error) {
	f.hit("MedicationGroups")
	return f.groups, f.groupsErr
}

func (f *fakeAPI) CreateMedicationGroup(context.Context, string) (models.MedicationGroup, error) {
	f.hit("CreateMedicationGroup")
	return f.createdGroup, f.createGroupErr
}

func (f *fakeAPI) DeleteMedicationGroup(_ context.Context, id int64) error {
	f.hit("DeleteMedicationGroup")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteGroupErr != nil {
		return f.deleteGroupErr
	}
	f.deletedGroups = append(f.deletedGroups, id)
	return nil
}
