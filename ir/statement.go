package ir

// Statement is one node of a function body. Statements carry side effects
// and control flow; values live in the expression arena and are referred
// to by handle.
type Statement struct {
	Kind StatementKind
	Span Span
}

// StatementKind is implemented by the Stmt* types.
type StatementKind interface {
	statementKind()
}

// Block is a list of statements run in order.
type Block []Statement

// Control flow.

// StmtBlock is a nested `{ ... }` block. A block that ends in return,
// break, continue or discard ends the enclosing block too.
type StmtBlock struct {
	Block Block
}

// StmtIf runs Accept when Condition is true and Reject otherwise.
type StmtIf struct {
	Condition ExpressionHandle // bool scalar
	Accept    Block
	Reject    Block
}

// StmtSwitch picks the case whose value equals Selector, or the default
// case. Case values are unique and there is exactly one default.
type StmtSwitch struct {
	Selector ExpressionHandle // i32 or u32 scalar
	Cases    []SwitchCase
}

// SwitchCase is one arm of a switch. The last case may not fall through.
type SwitchCase struct {
	Value       SwitchValue
	Body        Block
	FallThrough bool
}

// SwitchValue is the selector value an arm matches.
type SwitchValue interface {
	switchValue()
}

// SwitchValueI32 matches an i32 selector.
type SwitchValueI32 int32

// SwitchValueU32 matches a u32 selector.
type SwitchValueU32 uint32

// SwitchValueDefault matches every value not named by another case.
type SwitchValueDefault struct{}

// StmtLoop runs Body then Continuing until something leaves the loop.
// `for` and `while` lower to a loop whose body starts with a
// conditional break. BreakIf, when set, is tested after Continuing.
type StmtLoop struct {
	Body       Block
	Continuing Block
	BreakIf    *ExpressionHandle
}

// StmtBreak leaves the innermost loop or switch.
type StmtBreak struct{}

// StmtContinue jumps to the continuing block of the innermost loop.
type StmtContinue struct{}

// StmtReturn leaves the function. Value is nil for functions without a
// result.
type StmtReturn struct {
	Value *ExpressionHandle
}

// StmtKill is the fragment shader `discard`.
type StmtKill struct{}

// Side effects.

// StmtEmit marks a `let` or an uninitialized `var` declaration. The
// expressions in Range were introduced by the declaration; it has no
// other effect, but code after a return may not declare anything.
type StmtEmit struct {
	Range Range
}

// Range is a half-open run of expression handles.
type Range struct {
	Start ExpressionHandle
	End   ExpressionHandle
}

// StmtBarrier is workgroupBarrier() or storageBarrier().
type StmtBarrier struct {
	Flags BarrierFlags
}

// BarrierFlags select the address spaces a barrier orders.
type BarrierFlags uint32

const (
	BarrierStorage BarrierFlags = 1 << iota
	BarrierWorkGroup
)

// StmtStore writes Value through Pointer. Assignments and `var`
// initializers both lower to a store.
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
}

// StmtImageStore is textureStore(). The image must be a storage texture
// with write access.
type StmtImageStore struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Value      ExpressionHandle
}

// StmtCall calls a user function. Result, when set, is the
// ExprCallResult expression receiving the return value.
type StmtCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
	Result    *ExpressionHandle
}

func (StmtBlock) statementKind() {}
func (StmtIf) statementKind() {}
func (StmtSwitch) statementKind() {}
func (StmtLoop) statementKind() {}
func (StmtBreak) statementKind() {}
func (StmtContinue) statementKind() {}
func (StmtReturn) statementKind() {}
func (StmtKill) statementKind() {}
func (StmtBarrier) statementKind() {}
func (StmtEmit) statementKind() {}
func (StmtStore) statementKind() {}
func (StmtImageStore) statementKind() {}
func (StmtCall) statementKind() {}

func (SwitchValueI32) switchValue() {}
func (SwitchValueU32) switchValue() {}
func (SwitchValueDefault) switchValue() {}
