package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type CalculationPhase string

const (
	CreatedPhase    CalculationPhase = "Created"
	ProcessingPhase CalculationPhase = "Processing"
	CompletedPhase  CalculationPhase = "Completed"
	FailedPhase     CalculationPhase = "Failed"
)

// Finished reports whether the phase is terminal.
func (p CalculationPhase) Finished() bool {
	return p == CompletedPhase || p == FailedPhase
}

type Calculation struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec    CalculationSpec   `json:"spec"`
	Status  CalculationStatus `json:"status"`
	Phase   CalculationPhase  `json:"phase"`
	Results Values            `json:"results,omitempty"`
}

type CalculationList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`
	Items           []Calculation `json:"items"`
}

// CalculationSpec evaluates a single redshift method of a cosmology at every
// given redshift.
type CalculationSpec struct {
	Cosmology CosmologySpec `json:"cosmology"`
	// Method is a snake_case redshift method, e.g. comoving_distance.
	Method    string    `json:"method"`
	Redshifts []float64 `json:"redshifts"`
}

// CosmologySpec selects either a published realization by name or an
// explicit model with its parameters. Unset optional parameters take the
// library defaults.
type CosmologySpec struct {
	Realization string `json:"realization,omitempty"`

	Model string    `json:"model,omitempty"`
	Name  string    `json:"name,omitempty"`
	H0    float64   `json:"H0,omitempty"`
	Om0   float64   `json:"Om0,omitempty"`
	Ode0  float64   `json:"Ode0,omitempty"`
	Tcmb0 *float64  `json:"Tcmb0,omitempty"`
	Neff  *float64  `json:"Neff,omitempty"`
	MNu   []float64 `json:"m_nu,omitempty"`
	Ob0   *float64  `json:"Ob0,omitempty"`
}

type CalculationStatus struct {
	// StartTime is equal to the creation time of the calculation
	StartTime metav1.Time `json:"startTime,omitempty"`
	// PendingTime is the timestamp for when a worker picked the calculation up
	PendingTime *metav1.Time `json:"pendingTime,omitempty"`
	// CompletionTime is the timestamp for when the calculation goes to a final state
	CompletionTime *metav1.Time `json:"completionTime,omitempty"`
	// Message explains a failure.
	Message string `json:"message,omitempty"`
}
