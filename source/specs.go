package source

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"proxyprobe/models"
)

// Spec 一个代理列表地址及其协议族
type Spec struct {
	Family models.ProtocolFamily `json:"family"`
	URL    string                `json:"url"`
}

var defaultLists = map[models.ProtocolFamily][]string{
	models.HTTPForward: {
		"https://api.proxyscrape.com/v4/free-proxy-list/get?request=displayproxies&protocol=http&timeout=10000",
		"https://api.proxyscrape.com/v4/free-proxy-list/get?request=displayproxies&protocol=https&timeout=5000",
		"https://proxyspace.pro/http.txt",
		"https://proxyspace.pro/https.txt",
		"https://vakhov.github.io/fresh-proxy-list/http.txt",
		"https://vakhov.github.io/fresh-proxy-list/https.txt",
		"https://raw.githubusercontent.com/zloi-user/hideip.me/master/http.txt",
		"https://raw.githubusercontent.com/zloi-user/hideip.me/master/https.txt",
		"https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/http.txt",
		"https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/http.txt",
		"https://raw.githubusercontent.com/jetkai/proxy-list/main/online-proxies/txt/proxies-http.txt",
		"https://raw.githubusercontent.com/roosterkid/openproxylist/main/HTTPS_RAW.txt",
		"https://cdn.jsdelivr.net/gh/proxifly/free-proxy-list@main/proxies/protocols/http/data.txt",
		"https://raw.githubusercontent.com/sunny9577/proxy-scraper/master/generated/http_proxies.txt",
	},
	models.Socks4: {
		"https://api.proxyscrape.com/v4/free-proxy-list/get?request=displayproxies&protocol=socks4&timeout=10000",
		"https://proxyspace.pro/socks4.txt",
		"https://vakhov.github.io/fresh-proxy-list/socks4.txt",
		"https://raw.githubusercontent.com/zloi-user/hideip.me/master/socks4.txt",
		"https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/socks4.txt",
		"https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/socks4.txt",
		"https://raw.githubusercontent.com/jetkai/proxy-list/main/online-proxies/txt/proxies-socks4.txt",
		"https://raw.githubusercontent.com/roosterkid/openproxylist/main/SOCKS4_RAW.txt",
		"https://cdn.jsdelivr.net/gh/proxifly/free-proxy-list@main/proxies/protocols/socks4/data.txt",
		"https://raw.githubusercontent.com/sunny9577/proxy-scraper/master/generated/socks4_proxies.txt",
	},
	models.Socks5: {
		"https://api.proxyscrape.com/v4/free-proxy-list/get?request=displayproxies&protocol=socks5&timeout=10000",
		"https://proxyspace.pro/socks5.txt",
		"https://vakhov.github.io/fresh-proxy-list/socks5.txt",
		"https://raw.githubusercontent.com/zloi-user/hideip.me/master/socks5.txt",
		"https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/socks5.txt",
		"https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/socks5.txt",
		"https://raw.githubusercontent.com/jetkai/proxy-list/main/online-proxies/txt/proxies-socks5.txt",
		"https://raw.githubusercontent.com/roosterkid/openproxylist/main/SOCKS5_RAW.txt",
		"https://cdn.jsdelivr.net/gh/proxifly/free-proxy-list@main/proxies/protocols/socks5/data.txt",
		"https://raw.githubusercontent.com/sunny9577/proxy-scraper/master/generated/socks5_proxies.txt",
	},
}

// DefaultSpecs 内置的公开代理列表
func DefaultSpecs() []Spec {
	var specs []Spec
	for _, family := range models.Families() {
		for _, u := range defaultLists[family] {
			specs = append(specs, Spec{Family: family, URL: u})
		}
	}
	return specs
}

// LoadSpecs 读取 "family url" 格式的列表文件，空行和 # 开头的行被忽略
func LoadSpecs(path string) ([]Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var specs []Spec
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected \"family url\", got %q", path, lineNo, line)
		}
		family, err := models.ParseFamily(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		specs = append(specs, Spec{Family: family, URL: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}
