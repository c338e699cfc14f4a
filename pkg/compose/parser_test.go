package compose_test

import (
	"errors"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lissto-dev/composer/pkg/compose"
	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/layout"
	"github.com/lissto-dev/composer/pkg/serializer"
	"github.com/lissto-dev/composer/pkg/version"
)

func serviceByName(g *graph.Graph, name string) *graph.ServiceSpec {
	for i := range g.Services {
		if g.Services[i].Name == name {
			return &g.Services[i]
		}
	}
	Fail("no service named " + name)
	return nil
}

func nameOf(g *graph.Graph, id string) string {
	name, _, ok := g.NodeName(id)
	Expect(ok).To(BeTrue(), "unknown uuid %s", id)
	return name
}

// edges renders connections as "from->to" by name
func edges(g *graph.Graph) []string {
	var out []string
	for _, c := range g.Connections {
		out = append(out, nameOf(g, c.From())+"->"+nameOf(g, c.To()))
	}
	sort.Strings(out)
	return out
}

var _ = Describe("Parse", func() {
	Context("with a full document", func() {
		const doc = `
version: "3.8"
services:
  web:
    image: registry.example.com:5000/team/web:2.1
    build:
      context: ./web
      args:
        - VERSION=2.1
      cache_from:
        - web:latest
    command: ["npm", "start"]
    environment:
      NODE_ENV: production
      EMPTY:
    labels:
      - traefik.enable=true
    ports:
      - "8080:80"
      - "127.0.0.1:9090:9090"
      - target: 443
        published: 8443
    volumes:
      - static:/srv/static:ro
      - ./conf:/etc/web
      - /tmp
    networks:
      - front
      - unknown
    depends_on:
      - api
      - ghost
    deploy:
      replicas: 2
      labels:
        tier: frontend
      placement:
        preferences:
          - spread: node.labels.zone
  api:
    image: api
    depends_on:
      db:
        condition: service_healthy
    networks:
      front:
        aliases: [backend-api]
  db:
    image: postgres:15
    volumes:
      - type: volume
        source: pgdata
        target: /var/lib/postgresql/data
volumes:
  static:
  pgdata:
    external:
      name: shared-pg
networks:
  front:
    driver: bridge
    labels:
      team: core
secrets:
  token:
    file: ./token.txt
`

		var g *graph.Graph

		BeforeEach(func() {
			var err error
			g, err = compose.Parse(doc, nil)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should keep the version and document order", func() {
			Expect(g.Version).To(Equal("3.8"))
			Expect([]string{g.Services[0].Name, g.Services[1].Name, g.Services[2].Name}).To(Equal([]string{"web", "api", "db"}))
		})

		It("should assign short unique uuids", func() {
			seen := map[string]bool{}
			for _, s := range g.Services {
				Expect(s.UUID).To(MatchRegexp(`^[0-9A-F]{6}$`))
				seen[s.UUID] = true
			}
			for _, v := range g.Volumes {
				seen[v.UUID] = true
			}
			for _, n := range g.Networks {
				seen[n.UUID] = true
			}
			Expect(seen).To(HaveLen(6))
			Expect(g.Validate()).To(Succeed())
		})

		It("should split images on the last colon outside the registry host", func() {
			web := serviceByName(g, "web")
			Expect(web.Image).To(Equal("registry.example.com:5000/team/web"))
			Expect(web.Tag).To(Equal("2.1"))
			api := serviceByName(g, "api")
			Expect(api.Image).To(Equal("api"))
			Expect(api.Tag).To(Equal("latest"))
		})

		It("should read build, command, environment and labels", func() {
			web := serviceByName(g, "web")
			Expect(web.Build.Context).To(Equal("./web"))
			Expect(web.Build.Args).To(Equal(graph.KeyValues{{Key: "VERSION", Value: "2.1"}}))
			Expect([]string(web.Build.CacheFrom)).To(Equal([]string{"web:latest"}))
			Expect(web.Command.List).To(BeTrue())
			Expect(web.Command.Items).To(Equal([]string{"npm", "start"}))
			Expect(web.Environment).To(Equal(graph.KeyValues{{Key: "NODE_ENV", Value: "production"}, {Key: "EMPTY", Value: "", Unset: true}}))
			Expect(web.Labels).To(Equal(graph.KeyValues{{Key: "traefik.enable", Value: "true"}}))
		})

		It("should normalize ports", func() {
			web := serviceByName(g, "web")
			Expect(web.Ports).To(Equal([]graph.Port{
				{Published: "8080", Target: "80", Protocol: "tcp", Mode: "host"},
				{Published: "127.0.0.1:9090", Target: "9090", Protocol: "tcp", Mode: "host"},
				{Published: "8443", Target: "443", Protocol: "tcp", Mode: "host"},
			}))
		})

		It("should resolve mounts against top-level volumes", func() {
			web := serviceByName(g, "web")
			Expect(web.VolumeMounts).To(HaveLen(3))
			Expect(nameOf(g, web.VolumeMounts[0].Volume)).To(Equal("static"))
			Expect(web.VolumeMounts[0].Destination).To(Equal("/srv/static"))
			Expect(web.VolumeMounts[0].Mode).To(Equal("ro"))
			Expect(web.VolumeMounts[1]).To(Equal(graph.VolumeMount{RelativePathSource: "./conf", Destination: "/etc/web"}))
			Expect(web.VolumeMounts[2]).To(Equal(graph.VolumeMount{RelativePathSource: "/tmp", Destination: "/tmp"}))

			db := serviceByName(g, "db")
			Expect(nameOf(g, db.VolumeMounts[0].Volume)).To(Equal("pgdata"))
		})

		It("should drop unresolved references", func() {
			web := serviceByName(g, "web")
			Expect(web.NetworkRefs).To(HaveLen(1))
			Expect(nameOf(g, web.NetworkRefs[0])).To(Equal("front"))
			Expect(web.DependsOn).To(HaveLen(1))
			Expect(nameOf(g, web.DependsOn[0])).To(Equal("api"))
		})

		It("should read long-syntax depends_on and networks", func() {
			api := serviceByName(g, "api")
			Expect(api.DependsOn).To(HaveLen(1))
			Expect(nameOf(g, api.DependsOn[0])).To(Equal("db"))
			Expect(api.NetworkRefs).To(HaveLen(1))
		})

		It("should normalize deploy labels and placement preferences", func() {
			web := serviceByName(g, "web")
			Expect(web.Deploy["labels"]).To(Equal(graph.KeyValues{{Key: "tier", Value: "frontend"}}))
			placement := web.Deploy["placement"].(map[string]any)
			Expect(placement["preferences"]).To(Equal(graph.KeyValues{{Key: "spread", Value: "node.labels.zone"}}))
		})

		It("should read top-level volumes, networks and secrets", func() {
			Expect(g.Volumes).To(HaveLen(2))
			Expect(g.Volumes[0].Name).To(Equal("static"))
			Expect(g.Volumes[0].External).To(BeFalse())
			Expect(g.Volumes[1].External).To(BeTrue())
			Expect(g.Volumes[1].ExternalName).To(Equal("shared-pg"))
			Expect(g.Networks[0].Driver).To(Equal("bridge"))
			Expect(g.Networks[0].Labels).To(Equal(graph.KeyValues{{Key: "team", Value: "core"}}))
			Expect(g.Secrets).To(HaveKey("token"))
		})

		It("should connect services to dependencies and mounted volumes", func() {
			Expect(edges(g)).To(Equal([]string{"api->db", "db->pgdata", "web->api", "web->static"}))
		})

		It("should lay out every node", func() {
			Expect(g.Canvas).To(HaveLen(6))
			Expect(g.Viewport).To(Equal(graph.DefaultViewport()))
		})
	})

	It("should connect B to A and place A in the lower dependency group", func() {
		g, err := compose.Parse(`
services:
  b:
    image: busybox
    depends_on: [a]
  a:
    image: busybox
`, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(g.Version).To(Equal("latest"))
		Expect(edges(g)).To(Equal([]string{"b->a"}))

		Expect(layout.DependencyCount(g, serviceByName(g, "a"))).To(Equal(0))
		Expect(layout.DependencyCount(g, serviceByName(g, "b"))).To(Equal(1))
		// a is placed first, so after the reversal it is listed last
		Expect(g.Canvas[0].Name).To(Equal("b"))
		Expect(g.Canvas[1].Name).To(Equal("a"))
		Expect(g.Canvas[1].Position).To(Equal(graph.Position{Top: 220, Left: 220}))
	})

	It("should reuse a prior position for a known name", func() {
		text := "services:\n  web:\n    image: nginx\n  db:\n    image: postgres\n"
		first, err := compose.Parse(text, nil)
		Expect(err).ToNot(HaveOccurred())
		for i := range first.Canvas {
			if first.Canvas[i].Name == "web" {
				first.Canvas[i].Position = graph.Position{Top: 42, Left: 99}
			}
		}

		second, err := compose.Parse(text, layout.PriorFromGraph(first))
		Expect(err).ToNot(HaveOccurred())
		web := serviceByName(second, "web")
		for _, node := range second.Canvas {
			if node.Name == "web" {
				Expect(node.UUID).To(Equal(web.UUID))
				Expect(node.Position).To(Equal(graph.Position{Top: 42, Left: 99}))
			}
		}
	})

	It("should reuse a service position when a volume shares its name", func() {
		text := "services:\n  postgres:\n    image: postgres\n    volumes:\n      - postgres:/var/lib/postgresql/data\nvolumes:\n  postgres:\n"
		first, err := compose.Parse(text, nil)
		Expect(err).ToNot(HaveOccurred())
		for i := range first.Canvas {
			if first.Canvas[i].Kind == graph.KindService {
				first.Canvas[i].Position = graph.Position{Top: 999, Left: 999}
			}
		}

		second, err := compose.Parse(text, layout.PriorFromGraph(first))
		Expect(err).ToNot(HaveOccurred())
		Expect(second.Canvas).To(HaveLen(2))
		for _, node := range second.Canvas {
			switch node.Kind {
			case graph.KindService:
				Expect(node.Position).To(Equal(graph.Position{Top: 999, Left: 999}))
			case graph.KindVolume:
				Expect(node.Position).NotTo(Equal(graph.Position{Top: 999, Left: 999}))
			}
		}
	})

	Context("legacy documents", func() {
		It("should read root-level services without a version as generation 1", func() {
			g, err := compose.Parse(`
web:
  image: nginx
  links:
    - db:database
db:
  image: postgres
x-meta:
  owner: me
`, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(g.Version).To(Equal("1"))
			Expect(g.Services).To(HaveLen(2))
			web := serviceByName(g, "web")
			Expect(web.Links).To(HaveLen(1))
			Expect(nameOf(g, web.Links[0])).To(Equal("db"))
			Expect(edges(g)).To(Equal([]string{"web->db"}))
		})
	})

	It("should expand anchors and merge keys", func() {
		g, err := compose.Parse(`
x-base: &base
  image: alpine:3.19
  restart: always
services:
  one:
    <<: *base
    restart: "no"
  two: *base
`, nil)
		Expect(err).ToNot(HaveOccurred())
		one := serviceByName(g, "one")
		Expect(one.Image).To(Equal("alpine"))
		Expect(one.Tag).To(Equal("3.19"))
		Expect(one.Restart).To(Equal("no"))
		Expect(serviceByName(g, "two").Restart).To(Equal("always"))
	})

	Context("degenerate input", func() {
		It("should return an empty graph for an empty document", func() {
			g, err := compose.Parse("", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(g.Services).To(BeEmpty())
			Expect(g.Canvas).To(BeEmpty())
			Expect(g.Viewport).To(Equal(graph.DefaultViewport()))
		})

		It("should return an empty graph for a non-mapping root", func() {
			g, err := compose.Parse("- just\n- a list\n", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(g.Services).To(BeEmpty())
		})

		It("should report malformed YAML as a parse error", func() {
			_, err := compose.Parse("services:\n  web:\n    image: [nginx\n", nil)
			Expect(err).To(HaveOccurred())
			Expect(compose.IsParseError(err)).To(BeTrue())

			var pe *compose.ParseError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Kind).To(Equal(compose.KindMalformedInputDocument))
			Expect(pe.Line).To(BeNumerically(">", 0))
			Expect(pe.Message).ToNot(BeEmpty())
		})

		It("should reject an unreadable version", func() {
			_, err := compose.Parse("version: banana\nservices: {}\n", nil)
			Expect(errors.Is(err, version.ErrInvalidVersionToken)).To(BeTrue())
		})
	})
})

var _ = Describe("Round trip", func() {
	summary := func(g *graph.Graph) (services, volumes, networks, deps, mounts []string) {
		for _, s := range g.Services {
			services = append(services, s.Name)
			for _, m := range s.VolumeMounts {
				src := m.RelativePathSource
				if m.Volume != "" {
					src = nameOf(g, m.Volume)
				}
				mounts = append(mounts, s.Name+":"+src+":"+m.Destination)
			}
		}
		for _, v := range g.Volumes {
			volumes = append(volumes, v.Name)
		}
		for _, n := range g.Networks {
			networks = append(networks, n.Name)
		}
		for _, e := range edges(g) {
			deps = append(deps, e)
		}
		sort.Strings(mounts)
		return
	}

	original := func() *graph.Graph {
		g := graph.New("3")
		g.Services = []graph.ServiceSpec{
			{UUID: "W", Name: "web", Image: "nginx", Tag: "1.25", DependsOn: []string{"A"},
				VolumeMounts: []graph.VolumeMount{{Volume: "V", Destination: "/data"}, {RelativePathSource: "./html", Destination: "/usr/share/nginx/html"}}},
			{UUID: "A", Name: "api", Build: &graph.BuildSpec{Context: "./api"}, DependsOn: []string{"D"}},
			{UUID: "D", Name: "db", Image: "postgres", Tag: "15", VolumeMounts: []graph.VolumeMount{{Volume: "V", Destination: "/var/lib/postgresql/data"}}},
		}
		g.Volumes = []graph.VolumeSpec{{UUID: "V", Name: "data"}}
		g.Networks = []graph.NetworkSpec{{UUID: "N", Name: "backend"}}
		g.Connections = []graph.Connection{
			graph.NewConnection("W", "A"), graph.NewConnection("A", "D"),
			graph.NewConnection("W", "V"), graph.NewConnection("D", "V"),
		}
		return g
	}

	DescribeTable("names, dependency edges and mounts survive",
		func(v string) {
			g := original()
			text, err := serializer.NewComposeSerializer().Serialize(g, v)
			Expect(err).ToNot(HaveOccurred())

			parsed, err := compose.Parse(text, nil)
			Expect(err).ToNot(HaveOccurred())

			s1, v1, _, d1, m1 := summary(g)
			s2, v2, n2, d2, m2 := summary(parsed)
			Expect(s2).To(Equal(s1))
			Expect(v2).To(Equal(v1))
			Expect(d2).To(Equal(d1))
			Expect(m2).To(Equal(m1))
			if version.MustResolve(v).Generation.SupportsNetworks() {
				Expect(n2).To(Equal([]string{"backend"}))
			}
		},
		Entry("generation 1", "1"),
		Entry("generation 2", "2.4"),
		Entry("generation 3", "3"),
		Entry("latest", "latest"),
	)

	It("should keep pass-through environment entries unset", func() {
		for _, text := range []string{
			"services:\n  api:\n    image: api\n    environment:\n      API_TOKEN:\n      DEBUG: \"1\"\n      EMPTY: \"\"\n",
			"services:\n  api:\n    image: api\n    environment:\n      - API_TOKEN\n      - DEBUG=1\n      - EMPTY=\n",
		} {
			g, err := compose.Parse(text, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(g.Services[0].Environment).To(Equal(graph.KeyValues{
				{Key: "API_TOKEN", Value: "", Unset: true},
				{Key: "DEBUG", Value: "1"},
				{Key: "EMPTY", Value: ""},
			}))

			out, err := serializer.NewComposeSerializer().Serialize(g, "3")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("    environment:\n      API_TOKEN:\n      DEBUG: \"1\"\n      EMPTY: \"\"\n"))
		}
	})

	It("should serialize a re-imported document to the same text", func() {
		cs := serializer.NewComposeSerializer()
		text, err := cs.Serialize(original(), "3")
		Expect(err).ToNot(HaveOccurred())
		parsed, err := compose.Parse(text, nil)
		Expect(err).ToNot(HaveOccurred())
		again, err := cs.Serialize(parsed, "3")
		Expect(err).ToNot(HaveOccurred())
		Expect(again).To(Equal(text))
	})
})
