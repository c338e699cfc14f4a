package formatter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/formatter"
	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/version"
)

var _ = Describe("Quoted", func() {
	It("should prefer single quotes", func() {
		n := formatter.Quoted("traefik.enable")
		Expect(n.Style).To(Equal(yaml.SingleQuotedStyle))
		Expect(n.Value).To(Equal("traefik.enable"))
	})

	It("should strip embedded single quotes", func() {
		n := formatter.Quoted("it's")
		Expect(n.Style).To(Equal(yaml.SingleQuotedStyle))
		Expect(n.Value).To(Equal("its"))
	})

	It("should fall back to double quotes for embedded double quotes", func() {
		n := formatter.Quoted(`say "hi"`)
		Expect(n.Style).To(Equal(yaml.DoubleQuotedStyle))
		Expect(n.Value).To(Equal("say hi"))
	})
})

var _ = Describe("KeyValues", func() {
	It("should keep insertion order and quote values that look like other types", func() {
		kv := graph.KeyValues{{Key: "NAME", Value: "app"}, {Key: "DEBUG", Value: "true"}, {Key: "PORT", Value: "8080"}}
		Expect(render("environment", formatter.KeyValues(kv, false))).To(Equal(
			"environment:\n  NAME: app\n  DEBUG: \"true\"\n  PORT: \"8080\"\n"))
	})

	It("should keep the first position of a repeated key with the last value", func() {
		kv := graph.KeyValues{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}, {Key: "A", Value: "3"}}
		Expect(render("environment", formatter.KeyValues(kv, false))).To(Equal(
			"environment:\n  A: \"3\"\n  B: \"2\"\n"))
	})

	It("should write unset entries without a value", func() {
		kv := graph.KeyValues{{Key: "API_TOKEN", Unset: true}, {Key: "EMPTY", Value: ""}}
		Expect(render("environment", formatter.KeyValues(kv, false))).To(Equal(
			"environment:\n  API_TOKEN:\n  EMPTY: \"\"\n"))
	})

	It("should return nil for an empty list", func() {
		Expect(formatter.KeyValues(nil, true)).To(BeNil())
	})

	It("should normalize list and mapping shapes", func() {
		kv, ok := formatter.KeyValuesFrom([]any{"A=1", map[string]any{"key": "B", "value": float64(2)}})
		Expect(ok).To(BeTrue())
		Expect(kv).To(Equal(graph.KeyValues{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}}))

		kv, ok = formatter.KeyValuesFrom(map[string]any{"b": "2", "a": nil})
		Expect(ok).To(BeTrue())
		Expect(kv).To(Equal(graph.KeyValues{{Key: "a", Value: "", Unset: true}, {Key: "b", Value: "2"}}))

		_, ok = formatter.KeyValuesFrom([]any{map[string]any{"spread": "x"}})
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Ports", func() {
	It("should render double-quoted published and published:target strings", func() {
		ports := []graph.Port{{Published: "80"}, {Published: "8080", Target: "80"}}
		Expect(render("ports", formatter.Ports(ports))).To(Equal("ports:\n  - \"80\"\n  - \"8080:80\"\n"))
	})

	It("should omit an empty port list", func() {
		Expect(formatter.Ports([]graph.Port{{}})).To(BeNil())
	})
})

var _ = Describe("Command", func() {
	It("should render short multi-line commands as a flow list", func() {
		cmd := graph.NewCommandText("echo hello\necho world")
		Expect(render("command", formatter.Command(cmd))).To(Equal("command: [\"echo hello\", \"echo world\"]\n"))
	})

	It("should render long multi-line commands as a quoted block list", func() {
		cmd := graph.NewCommandText("python manage.py migrate --noinput\ngunicorn app.wsgi")
		Expect(render("command", formatter.Command(cmd))).To(Equal(
			"command:\n  - 'python manage.py migrate --noinput'\n  - 'gunicorn app.wsgi'\n"))
	})

	It("should parse list literals", func() {
		cmd := graph.NewCommandText(`["npm", "run", "start"]`)
		Expect(render("command", formatter.Command(cmd))).To(Equal("command: [\"npm\", \"run\", \"start\"]\n"))
	})

	DescribeTable("keeps bracketed text with unquoted items as a scalar",
		func(text string) {
			n := formatter.Command(graph.NewCommandText(text))
			Expect(n.Kind).To(Equal(yaml.ScalarNode))
			Expect(n.Value).To(Equal(text))

			var back map[string]string
			Expect(yaml.Unmarshal([]byte(render("command", n)), &back)).To(Succeed())
			Expect(back["command"]).To(Equal(text))
		},
		Entry("shell test", "[ -f /etc/app.conf ]"),
		Entry("bare words", "[a, b]"),
		Entry("mixed quoting", `["a", b]`),
	)

	It("should ignore blank lines when splitting", func() {
		Expect(render("command", formatter.Command(graph.NewCommandText("echo a\n")))).To(Equal("command: echo a\n"))
		Expect(formatter.SplitLines("migrate\n\n  \nserve\r\n")).To(Equal([]string{"migrate", "serve"}))
	})

	It("should accept single-quoted list literals", func() {
		cmd := graph.NewCommandText(`['sh', '-c', 'exit 0']`)
		Expect(render("command", formatter.Command(cmd))).To(Equal("command: [\"sh\", \"-c\", \"exit 0\"]\n"))
	})

	It("should keep a single-line string as a scalar", func() {
		cmd := graph.NewCommandText("npm start")
		Expect(render("command", formatter.Command(cmd))).To(Equal("command: npm start\n"))
	})

	It("should collapse a single element list", func() {
		n := formatter.Command(graph.NewCommandList("serve"))
		Expect(n.Kind).To(Equal(yaml.ScalarNode))
		Expect(n.Value).To(Equal("serve"))
	})

	It("should omit empty commands", func() {
		Expect(formatter.Command(nil)).To(BeNil())
		Expect(formatter.Command(graph.NewCommandText("  "))).To(BeNil())
		Expect(formatter.Command(graph.NewCommandList())).To(BeNil())
	})
})

var _ = Describe("Build", func() {
	spec := &graph.BuildSpec{
		Context:    "./app",
		Dockerfile: "Dockerfile.dev",
		Args:       graph.KeyValues{{Key: "VERSION", Value: "1.0"}},
		CacheFrom:  graph.StringList{"app:latest"},
	}

	It("should keep only the context in generation 1", func() {
		n := formatter.Build(spec, version.V1)
		Expect(n.Value).To(Equal("./app"))
	})

	It("should render the options mapping from generation 2", func() {
		Expect(render("build", formatter.Build(spec, version.V3))).To(Equal(
			"build:\n  context: ./app\n  dockerfile: Dockerfile.dev\n  args:\n    VERSION: \"1.0\"\n  cache_from:\n    - app:latest\n"))
	})

	It("should pass a short build string through", func() {
		n := formatter.Build(&graph.BuildSpec{Build: "."}, version.V2)
		Expect(n.Value).To(Equal("."))
	})

	It("should copy unknown options verbatim", func() {
		b := &graph.BuildSpec{Context: ".", Extra: map[string]any{"ssh": []any{"default"}, "empty": ""}}
		Expect(render("build", formatter.Build(b, version.Latest))).To(Equal(
			"build:\n  context: .\n  ssh:\n    - default\n"))
	})
})

var _ = Describe("Deploy", func() {
	deploy := map[string]any{
		"replicas": float64(2),
		"labels":   []any{map[string]any{"key": "tier", "value": "web"}},
		"placement": map[string]any{
			"constraints": []any{},
			"preferences": []any{map[string]any{"key": "spread", "value": "node.labels.zone"}},
		},
		"resources":      map[string]any{"limits": map[string]any{"cpus": ""}},
		"restart_policy": nil,
	}

	It("should convert labels, preferences and prune empty values", func() {
		Expect(render("deploy", formatter.Deploy(deploy, version.V3))).To(Equal(
			"deploy:\n  labels:\n    tier: web\n  placement:\n    preferences:\n      - spread: node.labels.zone\n  replicas: 2\n"))
	})

	It("should not be emitted before generation 3", func() {
		Expect(formatter.Deploy(deploy, version.V2)).To(BeNil())
	})

	It("should omit a deploy section with nothing left", func() {
		Expect(formatter.Deploy(map[string]any{"labels": []any{}, "mode": ""}, version.V3)).To(BeNil())
	})
})

var _ = Describe("Mounts", func() {
	volumes := []graph.VolumeSpec{{UUID: "V1", Name: "data"}}

	It("should render volume references, host paths and modes", func() {
		mounts := []graph.VolumeMount{
			{Volume: "V1", Destination: "/var/lib/postgresql/data"},
			{RelativePathSource: "./src", Destination: "/app", Mode: "ro"},
			{RelativePathSource: "/tmp"},
			{Volume: "MISSING", Destination: "/x"},
		}
		Expect(render("volumes", formatter.Mounts(mounts, volumes))).To(Equal(
			"volumes:\n  - data:/var/lib/postgresql/data\n  - ./src:/app:ro\n  - /tmp:/tmp\n"))
	})

	It("should resolve network references by uuid", func() {
		networks := []graph.NetworkSpec{{UUID: "N1", Name: "backend"}}
		Expect(render("networks", formatter.NetworkRefs([]string{"N1", "N2", "N1"}, networks))).To(Equal(
			"networks:\n  - backend\n"))
		Expect(formatter.NetworkRefs([]string{"N2"}, networks)).To(BeNil())
	})
})

var _ = Describe("Top-level sections", func() {
	It("should render external volumes and null entries", func() {
		volumes := []graph.VolumeSpec{
			{UUID: "V1", Name: "data", External: true},
			{UUID: "V2", Name: "cache"},
			{UUID: "V3", Name: "shared", External: true, ExternalName: "team-shared", Labels: graph.KeyValues{{Key: "a", Value: "b"}}},
		}
		Expect(render("volumes", formatter.TopLevelVolumes(volumes, version.V1))).To(Equal(
			"volumes:\n  data:\n    external: true\n  cache: null\n  shared:\n    external:\n      name: team-shared\n"))
	})

	It("should include labels from generation 2", func() {
		volumes := []graph.VolumeSpec{{UUID: "V1", Name: "data", Driver: "local", Labels: graph.KeyValues{{Key: "team", Value: "core"}}}}
		Expect(render("volumes", formatter.TopLevelVolumes(volumes, version.V2))).To(Equal(
			"volumes:\n  data:\n    driver: local\n    labels:\n      team: 'core'\n"))
	})

	It("should skip networks in generation 1", func() {
		networks := []graph.NetworkSpec{{UUID: "N1", Name: "backend"}}
		Expect(formatter.TopLevelNetworks(networks, version.V1)).To(BeNil())
		Expect(render("networks", formatter.TopLevelNetworks(networks, version.V3))).To(Equal("networks:\n  backend: null\n"))
	})
})

var _ = Describe("Dependencies", func() {
	It("should merge depends_on, links and key-label connections", func() {
		g := graph.New("3")
		g.Services = []graph.ServiceSpec{
			{UUID: "W1", Name: "web", Labels: graph.KeyValues{{Key: "key", Value: "web-key"}}, DependsOn: []string{"D1", "GONE"}},
			{UUID: "D1", Name: "db"},
			{UUID: "C1", Name: "cache", Labels: graph.KeyValues{{Key: "key", Value: "cache-key"}}},
			{UUID: "Q1", Name: "queue"},
		}
		g.Volumes = []graph.VolumeSpec{{UUID: "V1", Name: "data"}}
		g.Connections = []graph.Connection{
			graph.NewConnection("web-key", "cache-key"),
			graph.NewConnection("W1", "D1"),
			graph.NewConnection("W1", "V1"),
			graph.NewConnection("Q1", "W1"),
		}
		g.Services[0].Links = []string{"Q1"}

		Expect(formatter.Dependencies(g, &g.Services[0])).To(Equal([]string{"db", "queue", "cache"}))
		Expect(formatter.Dependencies(g, &g.Services[3])).To(Equal([]string{"web"}))
		Expect(formatter.Dependencies(g, &g.Services[1])).To(BeEmpty())
	})
})
