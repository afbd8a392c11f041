package costs

const ComputeHashGas = 100

const ReadStateGas = 10
const ReadStatePerByteGas = 1
const WriteStateGas = 20
const WriteStatePerByteGas = 2
const RemoveStateGas = 5
const ReadBlockGas = 5

const MoveBalanceGas = 30
const DeployContractGas = 200

const ContractCallGas = 100

// MinGasToSaveProgress is kept in reserve by resumable operations so that the checkpoint of an
// interrupted loop can always be written.
const MinGasToSaveProgress = 3_000
