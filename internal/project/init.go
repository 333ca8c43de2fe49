package project

import (
	"fmt"
	"path/filepath"
)

const exampleSource = `// A bounded stack whose contract lives in an interface.
interface StackContract extends Contract {
    @Pure
    int size();
    @Pure
    boolean isFull();
    @Pure
    Object top();

    @Requires("!isFull")
    @Ensures({"size_increases", "push_on_top"})
    void push(Object elem);

    boolean size_increases() { return size() == old().size() + 1; }
    boolean push_on_top(Object elem) { return top() == elem; }
}

class ArrayStack implements StackContract {
    Object[] items;
    int count;

    public ArrayStack(int capacity) {
        items = new Object[capacity];
    }

    public int size() { return count; }
    public boolean isFull() { return count == items.length; }
    public Object top() { return items[count - 1]; }

    public void push(Object elem) {
        items[count] = elem;
        count = count + 1;
    }

    @Invariant
    boolean count_in_range() { return count >= 0 && count <= items.length; }
}

class Main {
    public static void main() {
        ArrayStack s = new ArrayStack(2);
        s.push("elem1");
        s.push("elem2");
        println(s.size());
        s.push("elem3");
    }
}
`

// Init writes dbc.toml and src/stack.dbc into dir. Existing files are left
// alone; the returned paths are the ones actually written.
func Init(dir, name string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	if name == "" {
		name = filepath.Base(abs)
	}
	files := []struct {
		path string
		data string
	}{
		{filepath.Join(abs, ManifestName), DefaultManifest(name)},
		{filepath.Join(abs, "src", "stack.dbc"), exampleSource},
	}
	var written []string
	for _, f := range files {
		ok, err := writeFileIfAbsent(f.path, []byte(f.data))
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		if ok {
			written = append(written, f.path)
		}
	}
	return written, nil
}
