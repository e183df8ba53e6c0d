package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide"
)

var errBadRequest = errors.New("bad request")

// bearingResponse is the /api/v1/bearing body.
type bearingResponse struct {
	moonglide.Bearing
	Cue  moonglide.Cue       `json:"cue"`
	Moon *moonglide.MoonData `json:"moon,omitempty"`
}

// getMoon handles GET /api/v1/moon?lat=&lon=&time=
func (s *Server) getMoon(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	obs, err := s.observerFrom(q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	t, err := s.timeFrom(q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	md, err := s.calc.ComputeMoonData(obs, t)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, md)
}

// getMoonTimes handles GET /api/v1/moon/times?lat=&lon=&date=YYYY-MM-DD&tz=
func (s *Server) getMoonTimes(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	obs, err := s.observerFrom(q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	loc := s.loc
	if tz := q.Get("tz"); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			s.writeError(w, fmt.Errorf("%w: tz %q", errBadRequest, tz))
			return
		}
	}

	date := s.now().In(loc)
	if v := q.Get("date"); v != "" {
		if date, err = time.ParseInLocation("2006-01-02", v, loc); err != nil {
			s.writeError(w, fmt.Errorf("%w: date %q", errBadRequest, v))
			return
		}
	}

	mt, err := s.calc.ComputeMoonTimes(obs, date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, mt)
}

// getBearing handles GET /api/v1/bearing?deviceAz=&deviceAlt=[&moonAz=&moonAlt=]
// Without moonAz/moonAlt the Moon is computed for the observer and time in
// the query.
func (s *Server) getBearing(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	devAz, err := floatParam(q, "deviceAz")
	if err != nil {
		s.writeError(w, err)
		return
	}
	devAlt, err := floatParam(q, "deviceAlt")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var resp bearingResponse
	var moonAz, moonAlt float64
	if q.Has("moonAz") || q.Has("moonAlt") {
		if moonAz, err = floatParam(q, "moonAz"); err != nil {
			s.writeError(w, err)
			return
		}
		if moonAlt, err = floatParam(q, "moonAlt"); err != nil {
			s.writeError(w, err)
			return
		}
	} else {
		obs, err := s.observerFrom(q)
		if err != nil {
			s.writeError(w, err)
			return
		}
		t, err := s.timeFrom(q)
		if err != nil {
			s.writeError(w, err)
			return
		}
		md, err := s.calc.ComputeMoonData(obs, t)
		if err != nil {
			s.writeError(w, err)
			return
		}
		moonAz, moonAlt = md.Azimuth, md.Altitude
		resp.Moon = &md
	}

	b, err := moonglide.ComputeDeviceRelativeBearing(devAz, devAlt, moonAz, moonAlt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp.Bearing = b
	resp.Cue = moonglide.PointingCue(b, s.start, s.now())
	s.writeJSON(w, resp)
}

// serveWS upgrades to a websocket and streams moon, times and event
// messages until the client goes away.
func (s *Server) serveWS(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	// Prime the new client with the current position.
	if md, err := s.calc.ComputeMoonData(s.observer, s.now()); err == nil {
		if b, err := encode("moon", md); err == nil {
			c.send <- b
		}
	}

	s.hub.add(c)
	s.log.Info("websocket client connected",
		zap.String("client", c.id.String()),
		zap.String("remote", req.RemoteAddr),
	)

	go s.hub.writeLoop(c)
	s.hub.readLoop(c)
}

func (s *Server) observerFrom(q url.Values) (moonglide.Observer, error) {
	obs := s.observer
	var err error
	if q.Has("lat") {
		if obs.Latitude, err = floatParam(q, "lat"); err != nil {
			return obs, err
		}
	}
	if q.Has("lon") {
		if obs.Longitude, err = floatParam(q, "lon"); err != nil {
			return obs, err
		}
	}
	return obs, obs.Validate()
}

func (s *Server) timeFrom(q url.Values) (time.Time, error) {
	v := q.Get("time")
	if v == "" {
		return s.now(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q is not RFC 3339", errBadRequest, v)
	}
	return t, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", errBadRequest, name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", errBadRequest, name, v)
	}
	return f, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, moonglide.ErrInvalidObserver),
		errors.Is(err, moonglide.ErrInvalidBearing):
		status = http.StatusBadRequest
	default:
		s.log.Error("request failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}
