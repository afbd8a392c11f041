package embedded

import (
	"math/big"

	"github.com/multiversx/mx-launchpad-sc-sub000/blockchain/types"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/core/state"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/env"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/helpers"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/operation"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/vesting"
	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"
)

const (
	ticketToken    = "TICKET-a1b2c3"
	launchpadToken = "LAUNCH-d4e5f6"
	unlimitedGas   = 0

	deployHeight          = 1
	confirmationStart     = 10
	winnerSelectionStart  = 20
	claimStart            = 30
	initialUserBalance    = 1_000_000
	initialOwnerLaunchpad = 1_000_000_000
)

var (
	ticketPrice     = big.NewInt(100)
	tokensPerTicket = big.NewInt(1000)

	errOutOfGas = errors.New("out of gas")
)

type contractTester struct {
	db    dbm.DB
	state *state.StateDB

	owner        common.Address
	users        []common.Address
	contractAddr common.Address

	height uint64
	seed   types.Seed
	nonce  uint64
}

type contractTesterBuilder struct {
	usersCount int
	seed       types.Seed
}

func createTestContractBuilder(usersCount int) *contractTesterBuilder {
	return &contractTesterBuilder{usersCount: usersCount}
}

func (b *contractTesterBuilder) SetSeed(seed types.Seed) *contractTesterBuilder {
	b.seed = seed
	return b
}

func (b *contractTesterBuilder) Build() *contractTester {
	db := dbm.NewMemDB()
	s := state.NewStateDB(db)

	owner := common.BytesToAddress([]byte{0xff, 0xee})
	s.SetBalance(owner, launchpadToken, big.NewInt(initialOwnerLaunchpad))

	var users []common.Address
	for i := 0; i < b.usersCount; i++ {
		addr := common.BytesToAddress(common.ToBytes(uint64(i + 1)))
		s.SetBalance(addr, ticketToken, big.NewInt(initialUserBalance))
		users = append(users, addr)
	}
	if err := s.Commit(); err != nil {
		panic(err)
	}
	return &contractTester{
		db:     db,
		state:  s,
		owner:  owner,
		users:  users,
		height: deployHeight,
		seed:   b.seed,
	}
}

func (c *contractTester) header() *types.Header {
	return &types.Header{Height: c.height, Seed: c.seed}
}

func (c *contractTester) setHeight(h uint64) {
	c.height = h
}

// run executes a transaction the way the VM does: the payment is moved first, the write cache is
// committed only when the contract returns without error.
func (c *contractTester) run(tx *types.Transaction) (output []byte, err error) {
	gas := env.NewUnlimitedGasCounter()
	if tx.GasLimit != unlimitedGas {
		gas = env.NewGasCounter(tx.GasLimit)
	}
	e := env.NewEnvImp(c.state, c.header(), gas)

	var ctx env.CallContext
	if tx.Type == types.DeployContractTx {
		ctx = env.NewDeployContextImpl(tx)
	} else {
		ctx = env.NewCallContextImpl(tx)
	}

	defer func() {
		if r := recover(); r != nil {
			if !env.IsOutOfGas(r) {
				panic(r)
			}
			output, err = nil, errOutOfGas
		}
		if err != nil {
			e.Reset()
			return
		}
		e.Commit()
		if commitErr := c.state.Commit(); commitErr != nil {
			panic(commitErr)
		}
	}()

	if err := e.Transfer(tx.From, ctx.ContractAddr(), tx.PayToken, tx.AmountOrZero()); err != nil {
		return nil, err
	}
	contract := NewLaunchpad(ctx, e)
	if tx.Type == types.DeployContractTx {
		return nil, contract.Deploy(tx.Args...)
	}
	return contract.Call(tx.Method, tx.Args...)
}

func (c *contractTester) nextNonce() uint64 {
	c.nonce++
	return c.nonce
}

func (c *contractTester) Call(sender common.Address, gasLimit uint64, payToken string, payment *big.Int, method string, args ...[]byte) ([]byte, error) {
	return c.run(&types.Transaction{
		From:      sender,
		Nonce:     c.nextNonce(),
		Type:      types.CallContractTx,
		To:        &c.contractAddr,
		Method:    method,
		Args:      args,
		PayToken:  payToken,
		PayAmount: payment,
		GasLimit:  gasLimit,
	})
}

func (c *contractTester) OwnerCall(method string, args ...[]byte) error {
	_, err := c.Call(c.owner, unlimitedGas, "", nil, method, args...)
	return err
}

func (c *contractTester) Read(method string, args ...[]byte) ([]byte, error) {
	ctx := &env.ReadContextImpl{Contract: c.contractAddr}
	e := env.NewEnvImp(c.state, c.header(), env.NewUnlimitedGasCounter())
	return NewLaunchpad(ctx, e).Read(method, args...)
}

func (c *contractTester) ReadData(key string) []byte {
	return c.state.GetContractValue(c.contractAddr, []byte(key))
}

func (c *contractTester) Balance(addr common.Address, token string) *big.Int {
	return c.state.GetBalance(addr, token)
}

type configurableLaunchpadDeploy struct {
	contractTester *contractTester
	params         LaunchParams
}

func (c *contractTester) ConfigureDeploy() *configurableLaunchpadDeploy {
	return &configurableLaunchpadDeploy{
		contractTester: c,
		params: LaunchParams{
			TicketToken:             ticketToken,
			TicketPrice:             ticketPrice,
			LaunchpadToken:          launchpadToken,
			TokensPerWinningTicket:  tokensPerTicket,
			NrWinningTickets:        2,
			ConfirmationPeriodStart: confirmationStart,
			WinnerSelectionStart:    winnerSelectionStart,
			ClaimStart:              claimStart,
		},
	}
}

func (c *configurableLaunchpadDeploy) SetNrWinningTickets(n uint64) *configurableLaunchpadDeploy {
	c.params.NrWinningTickets = n
	return c
}

func (c *configurableLaunchpadDeploy) SetRequireFullConfirmation(value bool) *configurableLaunchpadDeploy {
	c.params.RequireFullConfirmation = value
	return c
}

func (c *configurableLaunchpadDeploy) SetUnlockSchedule(schedule vesting.Schedule) *configurableLaunchpadDeploy {
	c.params.UnlockSchedule = schedule
	return c
}

func (c *configurableLaunchpadDeploy) Parameters() (contract EmbeddedContractType, params [][]byte) {
	return LaunchpadContract, [][]byte{helpers.RlpArg(&c.params)}
}

func (c *configurableLaunchpadDeploy) Deploy() (*launchpadCaller, error) {
	tester := c.contractTester
	_, params := c.Parameters()
	tx := &types.Transaction{
		From:  tester.owner,
		Nonce: tester.nextNonce(),
		Type:  types.DeployContractTx,
		Args:  params,
	}
	tester.contractAddr = env.ComputeContractAddr(tx.From, tx.Nonce)
	if _, err := tester.run(tx); err != nil {
		return nil, err
	}
	return &launchpadCaller{tester}, nil
}

type launchpadCaller struct {
	contractTester *contractTester
}

func (c *launchpadCaller) user(i int) common.Address {
	return c.contractTester.users[i]
}

func (c *launchpadCaller) AddTickets(entries ...TicketEntry) error {
	return c.contractTester.OwnerCall("addTickets", helpers.RlpArg(entries))
}

func (c *launchpadCaller) ConfirmTickets(user int, n uint64) error {
	_, err := c.contractTester.Call(c.user(user), unlimitedGas, ticketToken,
		new(big.Int).Mul(ticketPrice, new(big.Int).SetUint64(n)), "confirmTickets", common.ToBytes(n))
	return err
}

func (c *launchpadCaller) Blacklist(users ...int) error {
	var args [][]byte
	for _, u := range users {
		args = append(args, c.user(u).Bytes())
	}
	return c.contractTester.OwnerCall("addUsersToBlacklist", args...)
}

func (c *launchpadCaller) RemoveFromBlacklist(users ...int) error {
	var args [][]byte
	for _, u := range users {
		args = append(args, c.user(u).Bytes())
	}
	return c.contractTester.OwnerCall("removeUsersFromBlacklist", args...)
}

func (c *launchpadCaller) DepositLaunchpadTokens(amount *big.Int) error {
	_, err := c.contractTester.Call(c.contractTester.owner, unlimitedGas, launchpadToken, amount, "depositLaunchpadTokens")
	return err
}

func (c *launchpadCaller) Deposit() error {
	nrWinning := new(big.Int).SetBytes(c.contractTester.ReadData("nrWinningTickets"))
	return c.DepositLaunchpadTokens(new(big.Int).Mul(tokensPerTicket, nrWinning))
}

// Step calls a resumable method once with the given gas limit.
func (c *launchpadCaller) Step(method string, gasLimit uint64) (operation.Status, error) {
	output, err := c.contractTester.Call(c.contractTester.owner, gasLimit, "", nil, method)
	if err != nil {
		return operation.Interrupted, err
	}
	return operation.Status(output[0]), nil
}

// RunToCompletion repeats a resumable method until it completes and returns the number of calls.
func (c *launchpadCaller) RunToCompletion(method string, gasLimit uint64) (int, error) {
	for calls := 1; ; calls++ {
		status, err := c.Step(method, gasLimit)
		if err != nil {
			return calls, err
		}
		if status == operation.Completed {
			return calls, nil
		}
		if calls > 100_000 {
			return calls, errors.New("operation does not complete")
		}
	}
}

func (c *launchpadCaller) Claim(user int) (*big.Int, error) {
	output, err := c.contractTester.Call(c.user(user), unlimitedGas, "", nil, "claimLaunchpadTokens")
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(output), nil
}

func (c *launchpadCaller) ClaimTicketPayment() error {
	return c.contractTester.OwnerCall("claimTicketPayment")
}

func (c *launchpadCaller) Stage() LaunchStage {
	data, err := c.contractTester.Read("launchStage")
	if err != nil {
		panic(err)
	}
	return LaunchStage(data[0])
}

func (c *launchpadCaller) readUint64(method string) uint64 {
	data, err := c.contractTester.Read(method)
	if err != nil {
		panic(err)
	}
	return common.FromBytes(data)
}

func (c *launchpadCaller) LastTicketId() uint64 {
	return c.readUint64("lastTicketId")
}

func (c *launchpadCaller) WinningTicketCount() uint64 {
	return c.readUint64("winningTicketCount")
}

func (c *launchpadCaller) NrWinningTickets() uint64 {
	return c.readUint64("nrWinningTickets")
}

func (c *launchpadCaller) TicketRange(user int) (TicketRange, bool) {
	data, err := c.contractTester.Read("ticketRange", c.user(user).Bytes())
	if err != nil {
		return TicketRange{}, false
	}
	var r TicketRange
	if err := helpers.ExtractRlp(0, &r, data); err != nil {
		panic(err)
	}
	return r, true
}

func (c *launchpadCaller) IsWinning(id uint64) bool {
	data, err := c.contractTester.Read("isWinningTicket", common.ToBytes(id))
	if err != nil {
		panic(err)
	}
	return data[0] == 1
}

// WinningSet lists the winning ids among all filtered tickets.
func (c *launchpadCaller) WinningSet() []uint64 {
	var result []uint64
	last := c.LastTicketId()
	for id := uint64(1); id <= last; id++ {
		if c.IsWinning(id) {
			result = append(result, id)
		}
	}
	return result
}

func (c *launchpadCaller) WinningInRange(user int) uint64 {
	r, ok := c.TicketRange(user)
	if !ok {
		return 0
	}
	var count uint64
	for id := r.FirstId; id <= r.LastId; id++ {
		if c.IsWinning(id) {
			count++
		}
	}
	return count
}

func (c *launchpadCaller) Flags() Flags {
	data, err := c.contractTester.Read("flags")
	if err != nil {
		panic(err)
	}
	var flags Flags
	if err := helpers.ExtractRlp(0, &flags, data); err != nil {
		panic(err)
	}
	return flags
}

func (c *launchpadCaller) OngoingOperation() operation.Kind {
	data, err := c.contractTester.Read("ongoingOperation")
	if err != nil {
		panic(err)
	}
	return operation.Kind(data[0])
}
