package main

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/cosmology"
	"github.com/vega-project/ccb-cosmology/pkg/db"
	"github.com/vega-project/ccb-cosmology/pkg/util"
)

var (
	errBadRequest    = errors.New("bad request")
	errNotCompleted  = errors.New("calculation has not completed")
	errUnknownMethod = errors.New("no such method")
)

type server struct {
	logger *logrus.Entry
	ctx    context.Context
	store  db.CalculationStore
	cache  db.ResultsCache
}

// cosmologyInfo describes a named cosmology.
type cosmologyInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  cosmology.Params `json:"parameters"`
	Methods     []string         `json:"methods,omitempty"`
}

// computeResponse carries the values of a method at the requested redshifts.
type computeResponse struct {
	Cosmology string    `json:"cosmology"`
	Method    string    `json:"method"`
	Redshifts []float64 `json:"redshifts"`
	Values    v1.Values `json:"values"`
	Cached    bool      `json:"cached"`
}

func setHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
	w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
}

func (s *server) getCosmologies(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	var infos []cosmologyInfo
	for _, name := range cosmology.RealizationNames() {
		c, err := cosmology.Realization(name)
		if err != nil {
			responseError(w, fmt.Sprintf("couldn't load cosmology %s", name), err)
			return
		}
		infos = append(infos, cosmologyInfo{Name: name, Description: c.String(), Parameters: c.Params()})
	}
	json.NewEncoder(w).Encode(infos)
}

func (s *server) getCosmology(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	name := mux.Vars(r)["name"]
	c, err := cosmology.Realization(name)
	if err != nil {
		responseError(w, fmt.Sprintf("couldn't get cosmology %s", name), err)
		return
	}
	json.NewEncoder(w).Encode(cosmologyInfo{
		Name:        name,
		Description: c.String(),
		Parameters:  c.Params(),
		Methods:     cosmology.MethodNames(c),
	})
}

// getCosmologyMethod evaluates a method of a realization at the redshifts
// given in the z query parameter.
func (s *server) getCosmologyMethod(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	vars := mux.Vars(r)
	spec := v1.CalculationSpec{
		Cosmology: v1.CosmologySpec{Realization: vars["name"]},
		Method:    vars["method"],
	}

	c, err := util.NewCosmology(spec.Cosmology)
	if err != nil {
		responseError(w, fmt.Sprintf("couldn't get cosmology %s", spec.Cosmology.Realization), err)
		return
	}
	if _, ok := cosmology.RedshiftMethods(c)[spec.Method]; !ok {
		responseError(w, fmt.Sprintf("cosmology %s has no method %s", spec.Cosmology.Realization, spec.Method), errUnknownMethod)
		return
	}

	spec.Redshifts, err = cosmology.ParseRedshifts(r.URL.Query().Get("z"))
	if err != nil {
		responseError(w, "couldn't parse the redshifts", err)
		return
	}

	s.compute(w, spec, c)
}

func (s *server) postCompute(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	spec, err := decodeSpec(r.Body)
	if err != nil {
		responseError(w, "couldn't decode json params", err)
		return
	}

	c, err := util.NewCosmology(spec.Cosmology)
	if err != nil {
		responseError(w, "couldn't create the cosmology", err)
		return
	}
	s.compute(w, spec, c)
}

func (s *server) compute(w http.ResponseWriter, spec v1.CalculationSpec, c cosmology.Cosmology) {
	logger := s.logger.WithFields(logrus.Fields{"cosmology": c.Name(), "method": spec.Method})

	key, err := cacheKey(spec)
	if err != nil {
		responseError(w, "couldn't hash the calculation spec", err)
		return
	}

	resp := computeResponse{Cosmology: c.String(), Method: spec.Method, Redshifts: spec.Redshifts}
	values, found, err := s.cache.CachedResults(key)
	if err != nil {
		logger.WithError(err).Warn("Couldn't read the results cache.")
	}
	if found {
		metricCacheRequests.WithLabelValues("hit").Inc()
		resp.Values, resp.Cached = values, true
		json.NewEncoder(w).Encode(resp)
		return
	}
	metricCacheRequests.WithLabelValues("miss").Inc()

	start := time.Now()
	values, err = cosmology.Evaluate(c, spec.Method, spec.Redshifts)
	metricComputeDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		responseError(w, "couldn't compute", err)
		return
	}

	if err := s.cache.CacheResults(key, values); err != nil {
		logger.WithError(err).Warn("Couldn't cache the results.")
	}
	resp.Values = values
	json.NewEncoder(w).Encode(resp)
}

func (s *server) createCalculation(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	spec, err := decodeSpec(r.Body)
	if err != nil {
		responseError(w, "couldn't decode json params", err)
		return
	}
	if err := util.ValidateSpec(spec); err != nil {
		responseError(w, "invalid calculation", err)
		return
	}

	calculation, err := util.NewCalculation(spec)
	if err != nil {
		responseError(w, "couldn't create calculation", err)
		return
	}

	if err := s.store.Create(calculation); err != nil {
		responseError(w, "couldn't create calculation", err)
	} else {
		metricCalculationsCreated.Inc()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(calculation)
	}
}

func (s *server) deleteCalculation(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)
	calcID := mux.Vars(r)["id"]

	if err := s.store.Delete(calcID); err != nil {
		responseError(w, fmt.Sprintf("couldn't delete calculation %s", calcID), err)
	} else {
		json.NewEncoder(w).Encode(response(fmt.Sprintf("calculation %q has been deleted", calcID), http.StatusOK))
	}
}

func (s *server) getCalculations(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	s.logger.WithFields(logrus.Fields{"host": r.Host, "url": r.URL, "method": r.Method, "user-agent": r.UserAgent()}).Info("getting calculations")

	calcList, err := s.store.List()
	if err != nil {
		responseError(w, "couldn't get calculations list", err)
	} else {
		json.NewEncoder(w).Encode(calcList)
	}
}

func (s *server) getCalculationByName(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	calcID := mux.Vars(r)["id"]
	calc, err := s.store.Get(calcID)
	if err != nil {
		responseError(w, fmt.Sprintf("failed to get calculation %s", calcID), err)
	} else {
		json.NewEncoder(w).Encode(calc)
	}
}

// getCalculationResultsByID sends a tar archive with the results of a
// completed calculation as csv and the calculation itself as json.
func (s *server) getCalculationResultsByID(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	calcID := mux.Vars(r)["id"]
	calc, err := s.store.Get(calcID)
	if err != nil {
		responseError(w, fmt.Sprintf("couldn't get calculation %s", calcID), err)
		return
	}
	if calc.Phase != v1.CompletedPhase {
		responseError(w, fmt.Sprintf("calculation %s is %s", calcID, calc.Phase), errNotCompleted)
		return
	}

	s.sendResults(w, calc)
}

func (s *server) sendResults(w http.ResponseWriter, calc *v1.Calculation) {
	csvData, err := util.ResultsCSV(calc)
	if err != nil {
		responseError(w, "couldn't render the results", err)
		return
	}
	calcData, err := json.MarshalIndent(calc, "", "  ")
	if err != nil {
		responseError(w, "couldn't encode the calculation", err)
		return
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	var files = []struct {
		name string
		data []byte
	}{
		{"results.csv", csvData},
		{"calculation.json", calcData},
	}
	for _, file := range files {
		hdr := &tar.Header{
			Name: file.name,
			Mode: 0600,
			Size: int64(len(file.data)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			responseError(w, "couldn't write header while creating the tar file", err)
			return
		}
		if _, err := tw.Write(file.data); err != nil {
			responseError(w, "couldn't write data while creating the tar file", err)
			return
		}
	}

	if err := tw.Close(); err != nil {
		responseError(w, "couldn't close the tar file", err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+fmt.Sprintf("%s-results.tar", calc.Name))
	w.Header().Set("Content-Type", "application/x-tar")

	if _, err := io.Copy(w, &buf); err != nil {
		s.logger.WithError(err).Error("couldn't copy data into response writer")
	}
}

func decodeSpec(body io.Reader) (v1.CalculationSpec, error) {
	var spec v1.CalculationSpec
	if err := json.NewDecoder(body).Decode(&spec); err != nil {
		return spec, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return spec, nil
}

func cacheKey(spec v1.CalculationSpec) (string, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return "", err
	}
	return util.InputHash(data), nil
}

type Response struct {
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

func response(message string, statusCode int) Response {
	return Response{
		Message:    message,
		StatusCode: statusCode,
	}
}

func errorStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, db.ErrNotFound),
		errors.Is(err, cosmology.ErrUnknownRealization),
		errors.Is(err, errUnknownMethod):
		return http.StatusNotFound
	case errors.Is(err, db.ErrAlreadyExists), errors.Is(err, errNotCompleted):
		return http.StatusConflict
	case errors.Is(err, errBadRequest), util.IsPermanent(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func responseError(w http.ResponseWriter, message string, err error) {
	statusCode := errorStatusCode(err)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response(fmt.Sprintf("%s: %v", message, err), statusCode))
}
