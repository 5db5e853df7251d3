package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/scenario"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 300
	orbitStep       = 0.1
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a scenario once per tick and draws it.
type Model struct {
	cfg      *config.Config
	runner   *scenario.Runner
	scene    *Scene
	frame    scenario.Frame
	canvas   *Canvas
	wire     *Wireframe
	cam      *Camera
	theme    Theme
	st       styles
	energy   []float64
	selected int
	running  bool
	areas    bool
	showHelp bool
	recorder *Recorder
	status   string
	err      error
}

func NewModel(cfg *config.Config) (Model, error) {
	m := Model{
		cfg:     cfg,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		wire:    NewWireframe(),
		cam:     NewCamera(),
		theme:   Themes[0],
		st:      newStyles(Themes[0]),
		running: true,
		areas:   true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	m.cam.Target = sceneCenter(m.frame)
	return m, nil
}

func (m *Model) reset() error {
	if m.runner != nil {
		m.runner.Close()
	}
	r, err := scenario.New(m.cfg)
	if err != nil {
		return err
	}
	f, err := r.Sample()
	if err != nil {
		r.Close()
		return err
	}
	m.runner = r
	m.scene = NewScene(r.Server(), r.World())
	m.frame = f
	m.energy = m.energy[:0]
	m.pushEnergy()
	return nil
}

// sceneCenter is the mean position of the moving bodies.
func sceneCenter(f scenario.Frame) mgl64.Vec3 {
	var c mgl64.Vec3
	n := 0
	for _, b := range f.Bodies {
		if b.Mode >= physics.BodyModeRigid {
			c = c.Add(b.Position)
			n++
		}
	}
	if n == 0 {
		return mgl64.Vec3{}
	}
	return c.Mul(1 / float64(n))
}

func (m *Model) pushEnergy() {
	e := 0.0
	for _, b := range m.frame.Bodies {
		e += metrics.KineticEnergy(b)
	}
	m.energy = append(m.energy, e)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[len(m.energy)-historyCapacity:]
	}
}

func (m *Model) step() {
	if m.runner.Done() {
		m.running = false
		return
	}
	f, err := m.runner.Advance()
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.frame = f
	m.pushEnergy()
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.wire.Clear()
	m.scene.Wireframe(m.wire, m.frame, m.areas)
	Render3D(m.canvas, m.wire, m.cam)
	if m.selected < len(m.frame.Bodies) {
		x, y, _, ok := m.cam.Project(m.frame.Bodies[m.selected].Position, m.canvas.Width*2, m.canvas.Height*4)
		if ok {
			m.canvas.DrawCircle(x, y, 3)
		}
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.runner.Close()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
			m.running = true
		case "tab":
			if n := len(m.frame.Bodies); n > 0 {
				m.selected = (m.selected + 1) % n
			}
		case "a":
			m.areas = !m.areas
		case "x":
			m.cam.RotatePitch(orbitStep)
		case "X":
			m.cam.RotatePitch(-orbitStep)
		case "y":
			m.cam.RotateYaw(orbitStep)
		case "Y":
			m.cam.RotateYaw(-orbitStep)
		case "+", "=":
			m.cam.ZoomIn()
		case "-", "_":
			m.cam.ZoomOut()
		case "t":
			m.theme = nextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = &Recorder{}
		m.status = "recording"
		return
	}
	path := fmt.Sprintf("%s_%d.gif", m.cfg.Name, time.Now().Unix())
	if err := m.recorder.Save(path); err != nil {
		m.status = err.Error()
	} else {
		m.status = "saved " + path
	}
	m.recorder = nil
}

func (m Model) View() string {
	st := m.st
	var s strings.Builder

	state := st.running.Render("RUNNING")
	switch {
	case m.err != nil:
		state = st.recording.Render("ERROR " + m.err.Error())
	case m.runner.Done():
		state = st.label.Render("FINISHED")
	case !m.running:
		state = st.paused.Render("PAUSED")
	}
	if m.recorder != nil {
		state += " " + st.recording.Render(fmt.Sprintf("REC %d", m.recorder.Len()))
	}
	s.WriteString(st.title.Render(strings.ToUpper(m.cfg.Name)) + "  " + state + "\n\n")

	frac := float64(m.frame.Step) / float64(max(1, m.cfg.Steps))
	s.WriteString(st.progressBar(frac, 24) + "\n")
	row := func(label, value string) {
		s.WriteString(st.label.Render(fmt.Sprintf("%-10s", label)) + st.value.Render(value) + "\n")
	}
	row("time", fmt.Sprintf("%.2fs  step %d/%d", m.frame.Time, m.frame.Step, m.cfg.Steps))
	row("active", fmt.Sprintf("%d", m.frame.Active))
	row("pairs", fmt.Sprintf("%d", m.frame.Pairs))
	row("islands", fmt.Sprintf("%d", m.frame.Islands))

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString("\n" + st.canvas.Render(chart) + "\n")
	}

	if m.selected < len(m.frame.Bodies) {
		b := m.frame.Bodies[m.selected]
		s.WriteString("\n" + st.title.Render(b.Name) + " " + st.label.Render(b.Mode.String()) + "\n")
		row("pos", fmtVec(b.Position))
		row("vel", fmtVec(b.LinearVelocity))
		row("ang", fmtVec(b.AngularVelocity))
		row("contacts", fmt.Sprintf("%d", b.Contacts))
		if b.Sleeping {
			row("state", "sleeping")
		} else {
			row("state", "awake")
		}
	}

	if n := len(m.runner.Events()); n > 0 {
		e := m.runner.Events()[n-1]
		verb := "left"
		if e.Added {
			verb = "entered"
		}
		row("event", fmt.Sprintf("%s %s %s", e.Object, verb, e.Area))
	}
	if m.status != "" {
		s.WriteString(st.muted.Render(m.status) + "\n")
	}
	s.WriteString(st.sparkline(m.energy, 30) + "\n")
	s.WriteString(st.muted.Render("\nSP:Pause N:Step R:Reset Q:Quit\nTab:Body A:Areas T:Theme G:Record ?:Help"))

	stats := st.panel.Width(46).Render(s.String())
	view := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), stats)
	if m.showHelp {
		return st.panel.Render(helpText) + "\n" + view
	}
	return view
}

const helpText = `Space  pause or resume stepping
N      single step while paused
R      rebuild the scenario
Tab    select the next body
A      show or hide areas
X/Y    orbit the camera (shift reverses)
+/-    zoom
T      cycle themes
G      start or stop GIF recording
?      toggle this help
Q      quit`

func fmtVec(v mgl64.Vec3) string {
	return fmt.Sprintf("%7.2f %7.2f %7.2f", v[0], v[1], v[2])
}
