package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/robots/cache"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/rohmanhakim/legaldata/pkg/timeutil"
	"github.com/temoto/robotstxt"
)

/*
Robot is the politeness gate in front of page and resource fetches.

Responsibilities
- Fetch robots.txt once per origin and keep it in the cache
- Evaluate the group that matches the configured user agent
- Report the crawl-delay of that group so the throttle can honor it
- Fail open when robots.txt is unreachable or the server errors

Robot never decides retries. A missing robots.txt (4xx) allows everything,
as does an unreachable one; both cases are reported as warnings.
*/

const maxRobotsBody = 512 * 1024

type Robot struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	userAgent    string
	cache        cache.Cache
}

func NewRobot(
	metadataSink metadata.MetadataSink,
	httpClient *http.Client,
	userAgent string,
	robotsCache cache.Cache,
) *Robot {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if robotsCache == nil {
		robotsCache = cache.NewMemoryCache(0)
	}
	return &Robot{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		userAgent:    userAgent,
		cache:        robotsCache,
	}
}

// Decide reports whether rawURL may be fetched.
func (r *Robot) Decide(ctx context.Context, rawURL string) (Decision, failure.ClassifiedError) {
	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() || target.Host == "" {
		robotsErr := &RobotsError{
			Message: fmt.Sprintf("cannot evaluate robots rules for %q", rawURL),
			Cause:   ErrCauseInvalidURL,
		}
		r.recordError(robotsErr, rawURL)
		return Decision{URL: rawURL}, robotsErr
	}

	origin := target.Scheme + "://" + target.Host
	entry, ok := r.cache.Get(origin)
	if !ok {
		fetched, fetchErr := r.fetch(ctx, origin)
		if fetchErr != nil {
			r.metadataSink.RecordWarning(
				time.Now(),
				"robots",
				"Robot.Decide",
				fetchErr.Error(),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, origin+"/robots.txt")},
			)
			return Decision{URL: rawURL, Allowed: true, Reason: RobotsUnavailable}, nil
		}
		entry = fetched
		r.cache.Put(origin, entry)
	}

	if entry.StatusCode >= http.StatusInternalServerError {
		return Decision{URL: rawURL, Allowed: true, Reason: RobotsUnavailable}, nil
	}

	data, err := robotstxt.FromStatusAndString(entry.StatusCode, entry.Body)
	if err != nil {
		r.metadataSink.RecordWarning(
			time.Now(),
			"robots",
			"Robot.Decide",
			fmt.Sprintf("unparseable robots.txt: %v", err),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, origin+"/robots.txt")},
		)
		return Decision{URL: rawURL, Allowed: true, Reason: RobotsUnavailable}, nil
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}

	group := data.FindGroup(r.userAgent)
	decision := Decision{URL: rawURL, Allowed: true, Reason: AllowedByRobots}
	if group == nil {
		return decision, nil
	}
	if group.CrawlDelay > 0 {
		decision.CrawlDelay = timeutil.DurationPtr(group.CrawlDelay)
	}
	if !group.Test(path) {
		decision.Allowed = false
		decision.Reason = DisallowedByRobots
	}
	return decision, nil
}

func (r *Robot) fetch(ctx context.Context, origin string) (cache.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return cache.Entry{}, &RobotsError{Message: err.Error(), Cause: ErrCauseFetchFailure}
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return cache.Entry{}, &RobotsError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseFetchFailure,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBody))
	if err != nil {
		return cache.Entry{}, &RobotsError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseFetchFailure,
		}
	}

	return cache.Entry{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		FetchedAt:  time.Now(),
	}, nil
}

func (r *Robot) recordError(err *RobotsError, rawURL string) {
	r.metadataSink.RecordError(
		time.Now(),
		"robots",
		"Robot.Decide",
		mapRobotsErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, rawURL)},
	)
}
