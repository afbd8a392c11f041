package main

import (
	"encoding/json"
	"io/ioutil"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/multiversx/mx-launchpad-sc-sub000/blockchain/types"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/embedded"
	"github.com/pkg/errors"
)

var defaultOwner = common.BytesToAddress([]byte{0xff, 0xee})

type Participant struct {
	Address    common.Address
	Tickets    uint64
	Confirm    uint64
	Guarantees []embedded.GuaranteedTicketInfo
}

// Scenario describes who takes part in a launch; the launch parameters come from the config file.
type Scenario struct {
	Owner        *common.Address
	Seed         hexutil.Bytes
	Participants []Participant
	Blacklist    []common.Address
}

func loadScenario(path string) (*Scenario, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Scenario file cannot be read, path: %v", path)
	}
	scenario := new(Scenario)
	if err := json.Unmarshal(data, scenario); err != nil {
		return nil, errors.Wrapf(err, "Cannot parse JSON scenario, path: %v", path)
	}
	return scenario, scenario.validate()
}

func (s *Scenario) validate() error {
	if len(s.Participants) == 0 {
		return errors.New("scenario has no participants")
	}
	if len(s.Seed) > len(types.Seed{}) {
		return errors.Errorf("seed is longer than %v bytes", len(types.Seed{}))
	}
	for _, p := range s.Participants {
		if p.Confirm > p.Tickets {
			return errors.Errorf("participant %v confirms %v of %v tickets", p.Address.Hex(), p.Confirm, p.Tickets)
		}
	}
	return nil
}

func (s *Scenario) owner() common.Address {
	if s.Owner == nil {
		return defaultOwner
	}
	return *s.Owner
}

func (s *Scenario) seed() types.Seed {
	var seed types.Seed
	copy(seed[:], s.Seed)
	return seed
}

func (s *Scenario) ticketEntries() []embedded.TicketEntry {
	entries := make([]embedded.TicketEntry, 0, len(s.Participants))
	for _, p := range s.Participants {
		entries = append(entries, embedded.TicketEntry{
			Address:    p.Address,
			Tickets:    p.Tickets,
			Guarantees: p.Guarantees,
		})
	}
	return entries
}
