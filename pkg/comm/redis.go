// pkg/comm/redis.go

package comm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ParIO/pkg/version"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrJobReused means another run of the same job still owns its keys,
// either running or interrupted less than a TTL ago.
var ErrJobReused = errors.New("job name is in use")

// RedisConfig tunes the Redis backed group.
type RedisConfig struct {
	Retries int
	// TTL bounds how long the keys of an unfinished job survive.
	TTL time.Duration
	// Poll is how long a single blocking pop waits before the abort flag
	// and the context are checked again. Redis counts it in whole seconds.
	Poll time.Duration
}

func (c *RedisConfig) fill() {
	if c.TTL < time.Second {
		c.TTL = time.Minute * 10
	}
	c.Poll = c.Poll.Truncate(time.Second)
	if c.Poll < time.Second {
		c.Poll = time.Second
	}
}

type redisComm struct {
	rdb        *redis.Client
	prefix     string
	rank, size int
	seq        uint64
	conf       RedisConfig
	shas       map[string]string
}

// JobName derives a stable job name from parts. The parts must include an
// identifier of the launch, so that two runs of the same command do not
// share their keys.
func JobName(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.Join(parts, "\x00"))).String()
}

// NewRedis joins the group named job as rank out of size, coordinating
// through the Redis server at url (redis://[user:password@]host:port/db).
// Joining fails with ErrJobReused if rank already joined job and the keys
// of that run did not expire yet.
func NewRedis(url, job string, rank, size int, conf *RedisConfig) (Communicator, error) {
	if size < 1 || rank < 0 || rank >= size {
		return nil, fmt.Errorf("invalid rank %d for group of %d", rank, size)
	}
	if job == "" {
		return nil, errors.New("job name is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %s", url, err)
	}
	var c RedisConfig
	if conf != nil {
		c = *conf
	}
	c.fill()
	if opt.Password == "" && os.Getenv("REDIS_PASSWORD") != "" {
		opt.Password = os.Getenv("REDIS_PASSWORD")
	}
	opt.ClientName = version.UserAgent()
	opt.MaxRetries = c.Retries
	opt.MinRetryBackoff = time.Millisecond * 100
	opt.MaxRetryBackoff = time.Minute * 1
	opt.ReadTimeout = time.Second * 30
	opt.WriteTimeout = time.Second * 5

	r := &redisComm{
		rdb:    redis.NewClient(opt),
		prefix: "pario{" + job + "}:",
		rank:   rank,
		size:   size,
		conf:   c,
		shas:   make(map[string]string),
	}
	ctx := context.Background()
	err = r.eval(ctx, scriptJoin, []string{r.membersKey(), r.abortKey()}, rank, r.ttl())
	if err != nil {
		defer r.rdb.Close()
		if strings.Contains(err.Error(), "EREUSED") {
			err = fmt.Errorf("%w: rank %d of job %s already joined, pick another job name", ErrJobReused, rank, job)
			// the ranks of this run that did join must not wait for us
			r.Abort(err)
			return nil, err
		}
		if msg, ok := strings.CutPrefix(err.Error(), "EABORTED "); ok {
			return nil, fmt.Errorf("%w: job %s was aborted: %s", ErrJobReused, job, parseAbort(msg))
		}
		return nil, fmt.Errorf("join job %s: %s", job, err)
	}
	logger.Debugf("rank %d/%d joined job %s at %s", rank, size, job, opt.Addr)
	return r, nil
}

func (r *redisComm) Rank() int {
	return r.rank
}

func (r *redisComm) Size() int {
	return r.size
}

func (r *redisComm) ttl() int {
	return int(r.conf.TTL / time.Second)
}

func (r *redisComm) abortKey() string {
	return r.prefix + "abort"
}

func (r *redisComm) membersKey() string {
	return r.prefix + "members"
}

func (r *redisComm) roundKeys(seq uint64) []string {
	k := r.prefix + "r" + strconv.FormatUint(seq, 10) + ":"
	return []string{k + "sum", k + "n", k + "kind", k + "out", r.membersKey()}
}

// eval runs script by its digest, loading it on first use and again after
// the server lost it.
func (r *redisComm) eval(ctx context.Context, script string, keys []string, args ...interface{}) error {
	sha, ok := r.shas[script]
	if !ok {
		var err error
		if sha, err = r.rdb.ScriptLoad(ctx, script).Result(); err != nil {
			return fmt.Errorf("load script: %s", err)
		}
		r.shas[script] = sha
	}
	err := r.rdb.EvalSha(ctx, sha, keys, args...).Err()
	if err != nil && strings.Contains(err.Error(), "NOSCRIPT") {
		logger.Info("script was flushed, loading it again")
		delete(r.shas, script)
		return r.eval(ctx, script, keys, args...)
	}
	return err
}

// checkAbort returns the abort reason posted by any rank of the job.
func (r *redisComm) checkAbort(ctx context.Context) error {
	val, err := r.rdb.Get(ctx, r.abortKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return parseAbort(val)
}

func parseAbort(val string) error {
	rank := -1
	if ps := strings.SplitN(val, ":", 2); len(ps) == 2 {
		if n, err := strconv.Atoi(ps[0]); err == nil {
			rank, val = n, ps[1]
		}
	}
	return Aborted(rank, errors.New(val))
}

func (r *redisComm) reduce(ctx context.Context, kind string, v interface{}) (string, error) {
	seq := r.seq
	r.seq++
	if err := r.checkAbort(ctx); err != nil {
		return "", err
	}
	keys := r.roundKeys(seq)
	err := r.eval(ctx, scriptReduce, keys, v, r.size, r.ttl(), kind)
	if err != nil {
		if strings.Contains(err.Error(), "EMISMATCH") {
			err = fmt.Errorf("%w: round %d", ErrMismatch, seq)
		}
		r.Abort(err)
		return "", Aborted(r.rank, err)
	}
	for {
		res, err := r.rdb.BLPop(ctx, r.conf.Poll, keys[3]).Result()
		if err == nil {
			return res[1], nil
		}
		if ctx.Err() != nil {
			r.Abort(ctx.Err())
			return "", Aborted(r.rank, ctx.Err())
		}
		if !errors.Is(err, redis.Nil) {
			return "", err
		}
		if err := r.checkAbort(ctx); err != nil {
			return "", err
		}
	}
}

func (r *redisComm) AllreduceSum(ctx context.Context, v int64) (int64, error) {
	s, err := r.reduce(ctx, "i", v)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func (r *redisComm) AllreduceFloat64(ctx context.Context, v float64) (float64, error) {
	s, err := r.reduce(ctx, "f", strconv.FormatFloat(v, 'g', -1, 64))
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func (r *redisComm) Barrier(ctx context.Context) error {
	_, err := r.AllreduceSum(ctx, 0)
	return err
}

// Abort posts err for the whole job, only the first reason is kept, and
// drops the partial state of the rounds in progress.
func (r *redisComm) Abort(err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	msg := fmt.Sprintf("%d:%s", r.rank, err)
	_, e := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, r.abortKey(), msg, r.conf.TTL)
		// peers are at most one round apart
		rounds := []uint64{r.seq}
		if r.seq > 0 {
			rounds = append(rounds, r.seq-1)
		}
		for _, seq := range rounds {
			keys := r.roundKeys(seq)
			pipe.Del(ctx, keys[0], keys[1], keys[2])
		}
		return nil
	})
	if e != nil {
		logger.Errorf("post abort of job %s: %s", r.prefix, e)
	}
}

// Close leaves the job. Once every rank left, the job name can be used
// again.
func (r *redisComm) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := r.rdb.HDel(ctx, r.membersKey(), strconv.Itoa(r.rank)).Err(); err != nil {
		logger.Warnf("leave job %s: %s", r.prefix, err)
	}
	return r.rdb.Close()
}
