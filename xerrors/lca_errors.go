package xerrors

var (
	// ErrMalformedTree 邻接表不是一棵合法的有根树（环、多父节点、悬空引用、多根）。
	ErrMalformedTree = New(ErrInvalidArg, 400101, "malformed tree", "", nil)
	// ErrInvalidStrategy 未知或不支持的 LCA 策略。
	ErrInvalidStrategy = New(ErrInvalidArg, 400102, "invalid strategy", "", nil)
	// ErrInvalidInput 输入格式错误。
	ErrInvalidInput = New(ErrInvalidArg, 400103, "invalid input", "", nil)
	// ErrUnknownNode 查询引用了树中不存在的节点。
	ErrUnknownNode = New(ErrNotFound, 404101, "unknown node", "", nil)
	// ErrNotPreprocessed 引擎未经预处理即被查询。
	ErrNotPreprocessed = New(ErrFailedPrecondition, 409101, "engine not preprocessed", "", nil)
	// ErrBatchAlreadyResolved 离线批次已开始解析，不再接受新的查询。
	ErrBatchAlreadyResolved = New(ErrFailedPrecondition, 409102, "batch already resolved", "", nil)
	// ErrIncompleteBatch 遍历结束后仍有查询对未被解析。
	ErrIncompleteBatch = New(ErrInternal, 500101, "incomplete batch", "", nil)
	// ErrResultMismatch 不同策略对同一批查询给出了不同答案。
	ErrResultMismatch = New(ErrInternal, 500102, "result mismatch", "", nil)
)
