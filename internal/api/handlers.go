// internal/api/handlers.go
package api

import (
	"net/http"

	"github.com/tamzrod/charger-bridge/internal/comms"
	"github.com/tamzrod/charger-bridge/internal/model"
	"github.com/tamzrod/charger-bridge/internal/segment"
)

// ---- live state ----

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var info model.DeviceInfo
	err := s.guard.Do(r.Context(), "status", func(m *comms.Manager) error {
		var err error
		info, err = m.GetDeviceInfo()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeWithPresence(w, info)
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := intVar(r, "ch")
	if err == nil {
		err = model.ValidChannel(ch)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	var cs model.ChannelStatus
	err = s.guard.Do(r.Context(), "channel status", func(m *comms.Manager) error {
		var err error
		cs, err = m.GetChannelStatus(ch)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeWithPresence(w, cs)
}

// handleControl carries no presence fields.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var c model.Control
	err := s.guard.Do(r.Context(), "control", func(m *comms.Manager) error {
		var err error
		c, err = m.GetControlRegister()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, c, http.StatusOK)
}

// ---- run / stop ----

func (s *Server) handleRun(op comms.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch, err := intVar(r, "ch")
		if err != nil {
			s.writeError(w, err)
			return
		}
		slot, err := intVar(r, "slot")
		if err != nil {
			s.writeError(w, err)
			return
		}

		var st model.DeviceStatus
		err = s.guard.Do(r.Context(), op.String(), func(m *comms.Manager) error {
			var err error
			st, err = m.RunOperation(op, ch, slot)
			return err
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeWithPresence(w, st)
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	ch, err := intVar(r, "ch")
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.log.WithField("channel", ch).Info("stop requested")

	var resp model.OperationResponse
	err = s.guard.Do(r.Context(), "stop", func(m *comms.Manager) error {
		var err error
		resp, err = m.StopOperation(ch)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeWithPresence(w, resp)
}

// ---- system storage ----

func (s *Server) handleGetSystem(w http.ResponseWriter, r *http.Request) {
	var sys model.SystemStorage
	err := s.guard.Do(r.Context(), "get system", func(m *comms.Manager) error {
		var err error
		sys, err = m.GetSystemStorage()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeWithPresence(w, sys)
}

// handlePutSystem ignores presence fields echoed back by clients.
func (s *Server) handlePutSystem(w http.ResponseWriter, r *http.Request) {
	var sys model.SystemStorage
	if err := decodeBody(r, &sys); err != nil {
		s.writeError(w, err)
		return
	}

	err := s.guard.Do(r.Context(), "save system", func(m *comms.Manager) error {
		return m.SaveSystemStorage(sys)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeWithPresence(w, sys)
}

func (s *Server) handleBeep(w http.ResponseWriter, r *http.Request) {
	index, err := intVar(r, "index")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var beep model.Beep
	if err := decodeBody(r, &beep); err != nil {
		s.writeError(w, err)
		return
	}

	var ack segment.Ack
	err = s.guard.Do(r.Context(), "set beep", func(m *comms.Manager) error {
		var err error
		ack, err = m.SetBeepProperties(index, beep.Enabled, beep.Volume)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeWithPresence(w, ack)
}

// ---- presets ----

// handlePresetList returns every live preset in index order.
func (s *Server) handlePresetList(w http.ResponseWriter, r *http.Request) {
	var out []model.PresetJSON
	err := s.guard.Do(r.Context(), "list presets", func(m *comms.Manager) error {
		out = out[:0]

		index, err := m.GetFullPresetList()
		if err != nil {
			return err
		}
		for _, slot := range index.Range() {
			p, err := m.GetPreset(slot)
			if err != nil {
				return err
			}
			out = append(out, p.ToJSON())
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if out == nil {
		out = []model.PresetJSON{}
	}
	s.writeJSON(w, out, http.StatusOK)
}

func (s *Server) handleAddPreset(w http.ResponseWriter, r *http.Request) {
	var p model.Preset
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	s.log.WithField("name", p.Name).Info("add preset requested")

	var added model.Preset
	err := s.guard.Do(r.Context(), "add preset", func(m *comms.Manager) error {
		var err error
		added, err = m.AddNewPreset(p)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, added.ToJSON(), http.StatusOK)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	slot, err := slotVar(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var p model.Preset
	err = s.guard.Do(r.Context(), "get preset", func(m *comms.Manager) error {
		var err error
		p, err = m.GetPreset(slot)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, p.ToJSON(), http.StatusOK)
}

// handlePutPreset overwrites an existing user preset and returns it as
// read back from the device.
func (s *Server) handlePutPreset(w http.ResponseWriter, r *http.Request) {
	slot, err := slotVar(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var p model.Preset
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	p.UseFlag = model.UseFlagUsed

	s.log.WithField("slot", slot).Info("save preset requested")

	var saved model.Preset
	err = s.guard.Do(r.Context(), "save preset", func(m *comms.Manager) error {
		if err := m.SavePresetToMemorySlot(p, slot, true); err != nil {
			return err
		}
		var err error
		saved, err = m.GetPreset(slot)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, saved.ToJSON(), http.StatusOK)
}

// handleDeletePreset returns the index after the removal.
func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	slot, err := slotVar(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.log.WithField("slot", slot).Info("delete preset requested")

	var index model.PresetIndex
	err = s.guard.Do(r.Context(), "delete preset", func(m *comms.Manager) error {
		if err := m.DeletePresetAtIndex(slot); err != nil {
			return err
		}
		var err error
		index, err = m.GetFullPresetList()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, index, http.StatusOK)
}

// ---- preset order ----

func (s *Server) handleGetPresetOrder(w http.ResponseWriter, r *http.Request) {
	var index model.PresetIndex
	err := s.guard.Do(r.Context(), "get preset order", func(m *comms.Manager) error {
		var err error
		index, err = m.GetFullPresetList()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, index, http.StatusOK)
}

// handlePostPresetOrder replaces the index. Positions past count are reset
// to the unused marker whatever the body held there.
func (s *Server) handlePostPresetOrder(w http.ResponseWriter, r *http.Request) {
	index := model.NewPresetIndex()
	if err := decodeBody(r, &index); err != nil {
		s.writeError(w, err)
		return
	}
	for i := index.Count; i >= 0 && i < model.MaxPresets; i++ {
		index.Indexes[i] = model.UnusedSlot
	}
	if err := index.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	err := s.guard.Do(r.Context(), "save preset order", func(m *comms.Manager) error {
		return m.SaveFullPresetList(index)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, index, http.StatusOK)
}
