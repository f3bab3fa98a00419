package entity

type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhasePassDevice Phase = "pass_device"
	PhaseReveal     Phase = "reveal"
	PhaseDebate     Phase = "debate"
)

func (that Phase) String() string {
	return string(that)
}
