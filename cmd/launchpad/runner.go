package main

import (
	"math/big"

	"github.com/multiversx/mx-launchpad-sc-sub000/blockchain/types"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/core/state"
	"github.com/multiversx/mx-launchpad-sc-sub000/log"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/embedded"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/helpers"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/operation"
	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"
)

const (
	// adminGasLimit covers the unbounded calls; only the resumable operations run with the configured limit.
	adminGasLimit     = uint64(1_000_000_000)
	maxOperationCalls = 1_000_000
)

var resumableOperations = []string{"filterTickets", "selectWinners", "distributeGuaranteedTickets"}

type ParticipantReport struct {
	Address        common.Address
	WinningTickets uint64
	Claimed        *big.Int
	Refunded       *big.Int
	Blacklisted    bool
}

type Report struct {
	Contract           common.Address
	WinningTicketCount uint64
	Calls              map[string]int
	Participants       []ParticipantReport
	OwnerTicketPayment *big.Int
	OwnerLaunchTokens  *big.Int
}

type runner struct {
	state    *state.StateDB
	header   *types.Header
	gasLimit uint64
	params   *embedded.LaunchParams
	scenario *Scenario
	owner    common.Address
	contract common.Address
	nonces   map[common.Address]uint64
	calls    map[string]int
	log      log.Logger
}

func newRunner(db dbm.DB, params *embedded.LaunchParams, scenario *Scenario, gasLimit uint64) *runner {
	return &runner{
		state:    state.NewStateDB(db),
		header:   &types.Header{Seed: scenario.seed()},
		gasLimit: gasLimit,
		params:   params,
		scenario: scenario,
		owner:    scenario.owner(),
		nonces:   make(map[common.Address]uint64),
		calls:    make(map[string]int),
		log:      log.New("component", "runner"),
	}
}

func (r *runner) vm() *vm.VmImpl {
	return vm.NewVmImpl(r.state, r.header)
}

func (r *runner) call(from common.Address, gasLimit uint64, token string, amount *big.Int, method string, args ...[]byte) ([]byte, error) {
	r.nonces[from]++
	receipt := r.vm().Run(&types.Transaction{
		From:      from,
		Nonce:     r.nonces[from],
		Type:      types.CallContractTx,
		To:        &r.contract,
		Method:    method,
		Args:      args,
		PayToken:  token,
		PayAmount: amount,
		GasLimit:  gasLimit,
	})
	r.calls[method]++
	if !receipt.Success {
		return nil, errors.Wrapf(receipt.Error, "%v from %v", method, from.Hex())
	}
	return receipt.Output, nil
}

func (r *runner) read(method string, args ...[]byte) ([]byte, error) {
	return r.vm().Read(r.contract, method, args...)
}

func (r *runner) advanceTo(height uint64) {
	for r.header.Height < height {
		r.header = r.header.NextHeader()
	}
	r.log.Debug("Advanced logical time", "height", r.header.Height)
}

// fund mints exactly what the launch needs: the confirmation payments and the owner's deposit.
func (r *runner) fund() error {
	for _, p := range r.scenario.Participants {
		payment := new(big.Int).Mul(r.params.TicketPrice, new(big.Int).SetUint64(p.Confirm))
		r.state.AddBalance(p.Address, r.params.TicketToken, payment)
	}
	deposit := new(big.Int).Mul(r.params.TokensPerWinningTicket, new(big.Int).SetUint64(r.params.NrWinningTickets))
	r.state.AddBalance(r.owner, r.params.LaunchpadToken, deposit)
	return r.state.Commit()
}

func (r *runner) deploy() error {
	r.nonces[r.owner]++
	receipt := r.vm().Run(&types.Transaction{
		From:     r.owner,
		Nonce:    r.nonces[r.owner],
		Type:     types.DeployContractTx,
		Args:     [][]byte{embedded.LaunchpadContract.Bytes(), helpers.RlpArg(r.params)},
		GasLimit: adminGasLimit,
	})
	if !receipt.Success {
		return errors.Wrap(receipt.Error, "failed to deploy launch")
	}
	r.contract = receipt.ContractAddress
	r.log.Info("Launch deployed", "contract", r.contract.Hex())
	return nil
}

func (r *runner) flags() (embedded.Flags, error) {
	var flags embedded.Flags
	data, err := r.read("flags")
	if err != nil {
		return flags, err
	}
	return flags, helpers.ExtractRlp(0, &flags, data)
}

// drive repeats a resumable operation until it reports completion.
func (r *runner) drive(method string) error {
	for i := 0; i < maxOperationCalls; i++ {
		output, err := r.call(r.owner, r.gasLimit, "", nil, method)
		if err != nil {
			if errors.Cause(err) == vm.ErrOutOfGas {
				return errors.Errorf("gas limit %v is too low for %v", r.gasLimit, method)
			}
			return err
		}
		if len(output) > 0 && operation.Status(output[0]) == operation.Completed {
			r.log.Info("Operation completed", "method", method, "calls", r.calls[method])
			return nil
		}
	}
	return errors.Errorf("%v has not completed after %v calls", method, maxOperationCalls)
}

func (r *runner) readUint64(method string) (uint64, error) {
	data, err := r.read(method)
	if err != nil {
		return 0, err
	}
	return common.FromBytes(data), nil
}

func (r *runner) Run() (*Report, error) {
	if err := r.fund(); err != nil {
		return nil, errors.Wrap(err, "failed to fund participants")
	}
	if err := r.deploy(); err != nil {
		return nil, err
	}
	if _, err := r.call(r.owner, adminGasLimit, "", nil, "addTickets", helpers.RlpArg(r.scenario.ticketEntries())); err != nil {
		return nil, err
	}

	r.advanceTo(r.params.ConfirmationPeriodStart)
	for _, p := range r.scenario.Participants {
		if p.Confirm == 0 {
			continue
		}
		payment := new(big.Int).Mul(r.params.TicketPrice, new(big.Int).SetUint64(p.Confirm))
		if _, err := r.call(p.Address, adminGasLimit, r.params.TicketToken, payment, "confirmTickets", common.ToBytes(p.Confirm)); err != nil {
			return nil, err
		}
	}
	if len(r.scenario.Blacklist) > 0 {
		var args [][]byte
		for _, addr := range r.scenario.Blacklist {
			args = append(args, addr.Bytes())
		}
		if _, err := r.call(r.owner, adminGasLimit, "", nil, "addUsersToBlacklist", args...); err != nil {
			return nil, err
		}
	}
	deposit := new(big.Int).Mul(r.params.TokensPerWinningTicket, new(big.Int).SetUint64(r.params.NrWinningTickets))
	if _, err := r.call(r.owner, adminGasLimit, r.params.LaunchpadToken, deposit, "depositLaunchpadTokens"); err != nil {
		return nil, err
	}

	r.advanceTo(r.params.WinnerSelectionStart)
	for _, method := range resumableOperations {
		flags, err := r.flags()
		if err != nil {
			return nil, err
		}
		// without guaranteed users winner selection finishes the additional step as well
		if method == "distributeGuaranteedTickets" && flags.AdditionalStepCompleted {
			continue
		}
		if err := r.drive(method); err != nil {
			return nil, err
		}
	}

	report := &Report{Calls: make(map[string]int)}
	for _, method := range resumableOperations {
		report.Calls[method] = r.calls[method]
	}
	winning, err := r.readUint64("winningTicketCount")
	if err != nil {
		return nil, err
	}
	report.WinningTicketCount = winning
	report.Contract = r.contract

	claimAt := r.params.ClaimStart
	for _, m := range r.params.UnlockSchedule {
		if m.Time > claimAt {
			claimAt = m.Time
		}
	}
	r.advanceTo(claimAt)

	blacklisted := make(map[common.Address]bool)
	for _, addr := range r.scenario.Blacklist {
		blacklisted[addr] = true
	}
	for _, p := range r.scenario.Participants {
		participant, err := r.claim(p.Address)
		if err != nil {
			return nil, err
		}
		participant.Blacklisted = blacklisted[p.Address]
		report.Participants = append(report.Participants, *participant)
	}

	if _, err := r.call(r.owner, adminGasLimit, "", nil, "claimTicketPayment"); err != nil {
		return nil, err
	}
	report.OwnerTicketPayment = r.state.GetBalance(r.owner, r.params.TicketToken)
	report.OwnerLaunchTokens = r.state.GetBalance(r.owner, r.params.LaunchpadToken)
	return report, nil
}

func (r *runner) claim(addr common.Address) (*ParticipantReport, error) {
	claimable, err := r.read("computeClaimableTokens", addr.Bytes())
	if err != nil {
		return nil, err
	}
	winning := new(big.Int).Div(new(big.Int).SetBytes(claimable), r.params.TokensPerWinningTicket)

	ticketsBefore := r.state.GetBalance(addr, r.params.TicketToken)
	launchBefore := r.state.GetBalance(addr, r.params.LaunchpadToken)
	if _, err := r.call(addr, adminGasLimit, "", nil, "claimLaunchpadTokens"); err != nil {
		// a participant without tickets to settle has nothing to claim
		if winning.Sign() > 0 {
			return nil, err
		}
		r.log.Debug("Nothing to claim", "addr", addr.Hex(), "err", err)
	}
	return &ParticipantReport{
		Address:        addr,
		WinningTickets: winning.Uint64(),
		Claimed:        new(big.Int).Sub(r.state.GetBalance(addr, r.params.LaunchpadToken), launchBefore),
		Refunded:       new(big.Int).Sub(r.state.GetBalance(addr, r.params.TicketToken), ticketsBefore),
	}, nil
}
