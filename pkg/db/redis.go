package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	redigo "github.com/garyburd/redigo/redis"
	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
)

const (
	calculationKeyPrefix = "cosmo:calc:"
	calculationsSetKey   = "cosmo:calcs"
	pendingListKey       = "cosmo:pending"
	resultsCachePrefix   = "cosmo:cache:"

	calculationField = "calculation"
	phaseField       = "phase"
)

var (
	ErrNotFound      = errors.New("calculation not found")
	ErrAlreadyExists = errors.New("calculation already exists")
)

// CalculationStore keeps the calculations and the queue of pending ones.
type CalculationStore interface {
	Create(calc *v1.Calculation) error
	Get(name string) (*v1.Calculation, error)
	List() (*v1.CalculationList, error)
	Update(calc *v1.Calculation) error
	Delete(name string) error
	Phase(name string) (v1.CalculationPhase, error)
	NextPending() (string, error)
	EnqueuePending(name string) error
}

// ResultsCache keeps recently computed synchronous results.
type ResultsCache interface {
	CachedResults(key string) ([]float64, bool, error)
	CacheResults(key string, values []float64) error
}

// RedisStore implements CalculationStore and ResultsCache. Every calculation
// is a hash holding its JSON document and its phase, the set of names is
// kept separately and pending calculations are a FIFO list.
type RedisStore struct {
	client   *redis.Client
	cacheTTL time.Duration
	logger   *logrus.Entry
}

func NewRedisStore(client *redis.Client, cacheTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:   client,
		cacheTTL: cacheTTL,
		logger:   logrus.WithField("component", "redis-store"),
	}
}

func calculationKey(name string) string {
	return calculationKeyPrefix + name
}

func (s *RedisStore) fields(calc *v1.Calculation) (map[string]interface{}, error) {
	raw, err := json.Marshal(calc)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal calculation %s: %w", calc.Name, err)
	}
	return map[string]interface{}{
		calculationField: string(raw),
		phaseField:       string(calc.Phase),
	}, nil
}

// Create stores a new calculation and queues it for the workers.
func (s *RedisStore) Create(calc *v1.Calculation) error {
	fields, err := s.fields(calc)
	if err != nil {
		return err
	}

	added, err := s.client.SAdd(calculationsSetKey, calc.Name).Result()
	if err != nil {
		return fmt.Errorf("couldn't register calculation %s: %w", calc.Name, err)
	}
	if added == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, calc.Name)
	}

	if _, err := s.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.HMSet(calculationKey(calc.Name), fields)
		pipe.LPush(pendingListKey, calc.Name)
		return nil
	}); err != nil {
		s.client.SRem(calculationsSetKey, calc.Name)
		return fmt.Errorf("couldn't store calculation %s: %w", calc.Name, err)
	}

	s.logger.WithField("calculation", calc.Name).Debug("Calculation stored.")
	return nil
}

func (s *RedisStore) Get(name string) (*v1.Calculation, error) {
	raw, err := s.client.HGet(calculationKey(name), calculationField).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	} else if err != nil {
		return nil, fmt.Errorf("couldn't get calculation %s: %w", name, err)
	}

	calc := &v1.Calculation{}
	if err := json.Unmarshal([]byte(raw), calc); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal calculation %s: %w", name, err)
	}
	return calc, nil
}

// List returns every stored calculation sorted by name. Names whose
// documents are gone are skipped.
func (s *RedisStore) List() (*v1.CalculationList, error) {
	names, err := s.client.SMembers(calculationsSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("couldn't list calculations: %w", err)
	}
	sort.Strings(names)

	list := &v1.CalculationList{Items: []v1.Calculation{}}
	for _, name := range names {
		calc, err := s.Get(name)
		if errors.Is(err, ErrNotFound) {
			s.logger.WithField("calculation", name).Warn("Calculation is registered but has no document.")
			continue
		} else if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, *calc)
	}
	return list, nil
}

func (s *RedisStore) Update(calc *v1.Calculation) error {
	exists, err := s.client.Exists(calculationKey(calc.Name)).Result()
	if err != nil {
		return fmt.Errorf("couldn't get calculation %s: %w", calc.Name, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, calc.Name)
	}

	fields, err := s.fields(calc)
	if err != nil {
		return err
	}
	if err := s.client.HMSet(calculationKey(calc.Name), fields).Err(); err != nil {
		return fmt.Errorf("couldn't update calculation %s: %w", calc.Name, err)
	}
	return nil
}

func (s *RedisStore) Delete(name string) error {
	var deleted *redis.IntCmd
	if _, err := s.client.TxPipelined(func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(calculationKey(name))
		pipe.SRem(calculationsSetKey, name)
		pipe.LRem(pendingListKey, 0, name)
		return nil
	}); err != nil {
		return fmt.Errorf("couldn't delete calculation %s: %w", name, err)
	}
	if deleted.Val() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Phase reads only the phase field of a calculation.
func (s *RedisStore) Phase(name string) (v1.CalculationPhase, error) {
	phase, err := redigo.Strings(s.client.HMGet(calculationKey(name), phaseField).Result())
	if err != nil {
		return "", fmt.Errorf("couldn't get the phase of calculation %s: %w", name, err)
	}
	if len(phase) == 0 || phase[0] == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v1.CalculationPhase(phase[0]), nil
}

// NextPending pops the oldest pending calculation name, or returns an empty
// name when nothing is pending.
func (s *RedisStore) NextPending() (string, error) {
	name, err := s.client.RPop(pendingListKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return name, err
}

func (s *RedisStore) EnqueuePending(name string) error {
	return s.client.LPush(pendingListKey, name).Err()
}

func (s *RedisStore) CachedResults(key string) ([]float64, bool, error) {
	raw, err := s.client.Get(resultsCachePrefix + key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("couldn't read cached results: %w", err)
	}

	var values v1.Values
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false, fmt.Errorf("couldn't unmarshal cached results: %w", err)
	}
	return values, true, nil
}

func (s *RedisStore) CacheResults(key string, values []float64) error {
	raw, err := json.Marshal(v1.Values(values))
	if err != nil {
		return err
	}
	return s.client.Set(resultsCachePrefix+key, raw, s.cacheTTL).Err()
}
